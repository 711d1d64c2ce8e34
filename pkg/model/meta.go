package model

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Segment représente une unité de sous-titre : offsets de début/fin et texte.
// Les segments arrivent triés par Start croissant (le service en est garant).
type Segment struct {
	Start Seconds `json:"start"`
	End   Seconds `json:"end"`
	Text  string  `json:"text"`
}

// Meta regroupe les métadonnées renvoyées par le service de transcription.
// Clés connues : source_language, model, platform, cache_key.
type Meta map[string]any

func (m Meta) str(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (m Meta) SourceLanguage() string { return m.str("source_language") }
func (m Meta) Model() string          { return m.str("model") }
func (m Meta) Platform() string       { return m.str("platform") }

// CacheKey est non vide quand le service a mis le résultat en cache :
// les téléchargements subtitles.srt / subtitles.vtt sont alors disponibles.
// false, 0 et "" valent absence.
func (m Meta) CacheKey() string {
	switch v := m["cache_key"].(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
	case float64:
		if v != 0 && !math.IsNaN(v) {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	case int:
		if v != 0 {
			return strconv.Itoa(v)
		}
	}
	return ""
}

// Result est le résultat courant d'une transcription.
// Seul Transcript est remplacé (par un refine) ; le reste est figé à la création.
type Result struct {
	Transcript  string    `json:"transcript"`
	Subtitles   []Segment `json:"subtitles"`
	Meta        Meta      `json:"meta"`
	VTT         string    `json:"vtt"`
	OriginalURL string    `json:"original_url"`
}

// Clone retourne une copie indépendante (slices et map dupliqués).
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	c := *r
	c.Subtitles = slices.Clone(r.Subtitles)
	c.Meta = maps.Clone(r.Meta)
	return &c
}

// Cached indique si les liens de téléchargement peuvent être proposés.
func (r *Result) Cached() bool {
	return r != nil && r.Meta.CacheKey() != ""
}

func (r Result) String() string {
	return fmt.Sprintf("Result[URL=%s, Lang=%s, Model=%s, Segments=%d, TranscriptLen=%d]",
		r.OriginalURL, r.Meta.SourceLanguage(), r.Meta.Model(), len(r.Subtitles), len(r.Transcript))
}

// Pretty retourne une fiche multi-lignes simple (mode auto / logs).
func (r Result) Pretty() string {
	orUnknown := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "<unknown>"
		}
		return s
	}
	return fmt.Sprintf(
		"Result:\n"+
			"  URL       : %s\n"+
			"  Language  : %s\n"+
			"  Model     : %s\n"+
			"  Platform  : %s\n"+
			"  Segments  : %d\n"+
			"  Cached    : %t\n",
		r.OriginalURL,
		orUnknown(r.Meta.SourceLanguage()),
		orUnknown(r.Meta.Model()),
		orUnknown(r.Meta.Platform()),
		len(r.Subtitles),
		r.Cached(),
	)
}
