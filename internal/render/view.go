package render

import (
	"strings"
	"text/template"

	"github.com/patrickprogramme/reelscribe/internal/fsutil"
	"github.com/patrickprogramme/reelscribe/internal/subtitles"
	"github.com/patrickprogramme/reelscribe/pkg/model"
)

// Link est un lien de téléchargement affiché sous le résultat.
type Link struct {
	Label string
	URL   string
}

// Linker fournit l'URL de téléchargement d'un format (implémenté par api.Client).
type Linker interface {
	SubtitlesURL(f model.Format, originalURL string) (string, error)
}

// View contient les données exposées au template de résultat.
type View struct {
	Transcript string
	Subtitles  []model.Segment
	Meta       model.Meta
	VTT        string
	Links      []Link
}

// NewView prépare la vue d'un résultat. Les liens ne sont proposés que si le
// service a mis le résultat en cache et qu'un Linker est fourni.
func NewView(r *model.Result, l Linker) View {
	if r == nil {
		return View{}
	}
	v := View{
		Transcript: r.Transcript,
		Subtitles:  r.Subtitles,
		Meta:       r.Meta,
		VTT:        r.VTT,
	}
	if !r.Cached() || l == nil {
		return v
	}
	for _, f := range []model.Format{model.FormatSRT, model.FormatVTT} {
		u, err := l.SubtitlesURL(f, r.OriginalURL)
		if err != nil {
			continue
		}
		v.Links = append(v.Links, Link{Label: "Download " + strings.ToUpper(f.String()), URL: u})
	}
	return v
}

// baseFuncMap construit la liste des fonctions exposées aux templates.
func baseFuncMap() template.FuncMap {
	return template.FuncMap{
		// srt : {{ srt .Subtitles }} ; une erreur d'horodatage interrompt le rendu
		"srt": func(segs []model.Segment) (string, error) {
			return subtitles.ToSRT(segs)
		},
		"orDefault":  orDefault,
		"capitalize": fsutil.CapitalizeFirst,
	}
}

// orDefault retourne def si s est vide (ou seulement des espaces).
func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
