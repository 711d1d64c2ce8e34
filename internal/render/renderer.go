package render

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"text/template"

	"github.com/patrickprogramme/reelscribe/internal/assets"
)

// Renderer gère parsing paresseux (lazy) des templates et fournit des méthodes de rendu.
type Renderer struct {
	templates *template.Template // templates parsés
	fsys      fs.FS              // source des templates (embed.FS ou os.DirFS)
	patterns  []string           // patterns relatifs au fsys, ex: "*.tmpl"
	once      sync.Once          // protège l'initialisation paresseuse
	err       error              // mémorise l'erreur d'initialisation (utile avec once)
}

// NewRendererFromFS construit un Renderer configuré pour parser ultérieurement les patterns
// fournis depuis le fsys (ne parse pas immédiatement).
func NewRendererFromFS(fsys fs.FS, patterns []string) (*Renderer, error) {
	if fsys == nil {
		return nil, fmt.Errorf("fsys est nil")
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("aucun template fourni")
	}
	cp := append([]string(nil), patterns...)
	return &Renderer{
		fsys:     fsys,
		patterns: cp,
	}, nil
}

// EmbeddedRenderer lit les templates embarqués dans le binaire.
func EmbeddedRenderer() (*Renderer, error) {
	sub, err := fs.Sub(assets.Embedded, "templates")
	if err != nil {
		return nil, fmt.Errorf("templates embarqués : %w", err)
	}
	return NewRendererFromFS(sub, []string{assets.ResultTemplate})
}

// DefaultRenderer lit les templates à côté du binaire (modifiables par
// l'utilisateur) et se replie sur les templates embarqués s'ils sont absents
// ou invalides.
func DefaultRenderer(exePath string) (*Renderer, error) {
	tplDir := filepath.Join(filepath.Dir(exePath), "templates")
	if _, err := os.Stat(filepath.Join(tplDir, assets.ResultTemplate)); err == nil {
		r, err := NewRendererFromFS(os.DirFS(tplDir), []string{assets.ResultTemplate})
		if err != nil {
			return nil, err
		}
		perr := r.ParseNow()
		if perr == nil {
			return r, nil
		}
		fmt.Printf("warning : template %s invalide, utilisation du modèle embarqué : %v\n", tplDir, perr)
	}
	r, err := EmbeddedRenderer()
	if err != nil {
		return nil, err
	}
	if err := r.ParseNow(); err != nil {
		return nil, err
	}
	return r, nil
}

// parseTemplates effectue le parsing des templates une seule fois (sync.Once).
func (r *Renderer) parseTemplates() error {
	r.once.Do(func() {
		t := template.New("root").Funcs(baseFuncMap())
		for _, p := range r.patterns {
			var parseErr error
			t, parseErr = t.ParseFS(r.fsys, p)
			if parseErr != nil {
				r.err = fmt.Errorf("parse pattern %q: %w", p, parseErr)
				return
			}
		}
		r.templates = t
	})
	return r.err
}

// ParseNow force l'initialisation / parsing immédiat et retourne l'erreur si problème.
func (r *Renderer) ParseNow() error {
	if r == nil {
		return fmt.Errorf("nil renderer")
	}
	return r.parseTemplates()
}

// Render exécute le template nommé tmplName (basename du fichier .tmpl) avec data.
func (r *Renderer) Render(tmplName string, data any) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("renderer is nil")
	}
	if err := r.parseTemplates(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, tmplName, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", tmplName, err)
	}
	return buf.Bytes(), nil
}

// RenderResult rend la fiche d'un résultat avec le template par défaut.
func (r *Renderer) RenderResult(v View) (string, error) {
	b, err := r.Render(assets.ResultTemplate, v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// TemplateNames retourne la liste des noms (basenames) des templates parsés.
// Si le parsing n'a pas encore été fait, renvoie les basenames des patterns.
func (r *Renderer) TemplateNames() []string {
	if r == nil {
		return nil
	}
	if r.templates == nil {
		out := make([]string, 0, len(r.patterns))
		for _, p := range r.patterns {
			out = append(out, filepath.Base(p))
		}
		return out
	}
	names := make([]string, 0, len(r.templates.Templates()))
	for _, t := range r.templates.Templates() {
		if n := t.Name(); n != "" && n != "root" {
			names = append(names, n)
		}
	}
	return names
}
