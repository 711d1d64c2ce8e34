// Package export écrit un résultat sur disque : transcript, SRT dérivé
// localement, WebVTT fourni par le service, et les documents téléchargés
// depuis le cache du service.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/patrickprogramme/reelscribe/internal/fsutil"
	"github.com/patrickprogramme/reelscribe/internal/platform"
	"github.com/patrickprogramme/reelscribe/internal/subtitles"
	"github.com/patrickprogramme/reelscribe/pkg/model"
)

var (
	// ErrNoResult : aucun résultat à exporter.
	ErrNoResult = errors.New("aucun résultat")
	// ErrNotCached : le service n'a pas mis le résultat en cache (pas de cache_key).
	ErrNotCached = errors.New("résultat non mis en cache par le service")
	// ErrNoVTT : le service n'a pas fourni de WebVTT.
	ErrNoVTT = errors.New("aucun WebVTT dans le résultat")
)

// Messages montrés à l'utilisateur.
const (
	MsgNotCached      = "Downloads unavailable: result not cached"
	MsgDownloadFailed = "Download failed"
	MsgSaveFailed     = "Save failed"
)

// UserMessage traduit une erreur d'export en message court.
func UserMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, ErrNotCached):
		return MsgNotCached
	case errors.Is(err, ErrNoVTT):
		return "No WebVTT in this result"
	case errors.Is(err, ErrNoResult):
		return "Nothing to export"
	}
	return fallback
}

// Downloader récupère un document de sous-titres mis en cache (implémenté par api.Client).
type Downloader interface {
	DownloadSubtitles(ctx context.Context, f model.Format, originalURL string) ([]byte, error)
}

// Selection indique les fichiers à écrire par SaveAll.
type Selection struct {
	Transcript bool
	SRT        bool
	VTT        bool
}

// Exporter écrit les fichiers d'un résultat dans OutDir.
// Les fichiers existants ne sont jamais écrasés (suffixe _1, _2, ...).
type Exporter struct {
	dl       Downloader
	outDir   string
	inSubdir bool
	logger   *slog.Logger
}

// New construit un Exporter. dl peut être nil si Download n'est pas utilisé.
func New(dl Downloader, outDir string, inSubdir bool, logger *slog.Logger) *Exporter {
	if outDir == "" {
		outDir = "."
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		dl:       dl,
		outDir:   outDir,
		inSubdir: inSubdir,
		logger:   logger.With("component", "export"),
	}
}

// Dir retourne le dossier de sortie du résultat.
func (e *Exporter) Dir(r *model.Result) string {
	if !e.inSubdir || r == nil {
		return e.outDir
	}
	return filepath.Join(e.outDir, fsutil.SanitizeFilename(platform.BaseName(r.OriginalURL)))
}

func (e *Exporter) filename(r *model.Result, f model.Format) string {
	return subtitles.Filename(platform.BaseName(r.OriginalURL), r.Meta.SourceLanguage(), f)
}

func (e *Exporter) write(r *model.Result, f model.Format, content []byte) (string, error) {
	path, err := fsutil.SaveFileAtomic(e.Dir(r), e.filename(r, f), content, false)
	if err != nil {
		return "", fmt.Errorf("écriture %s : %w", f, err)
	}
	e.logger.Info("file written", "format", f, "path", path, "bytes", len(content))
	return path, nil
}

// SaveTranscript écrit le transcript courant (éventuellement affiné).
func (e *Exporter) SaveTranscript(r *model.Result) (string, error) {
	if r == nil {
		return "", ErrNoResult
	}
	return e.write(r, model.FormatTXT, []byte(r.Transcript))
}

// SaveSRT dérive le SRT des segments et l'écrit.
func (e *Exporter) SaveSRT(r *model.Result) (string, error) {
	if r == nil {
		return "", ErrNoResult
	}
	doc, err := subtitles.ToSRT(r.Subtitles)
	if err != nil {
		return "", fmt.Errorf("conversion SRT : %w", err)
	}
	return e.write(r, model.FormatSRT, []byte(doc))
}

// SaveVTT écrit le WebVTT renvoyé par le service.
func (e *Exporter) SaveVTT(r *model.Result) (string, error) {
	if r == nil {
		return "", ErrNoResult
	}
	if r.VTT == "" {
		return "", ErrNoVTT
	}
	return e.write(r, model.FormatVTT, []byte(r.VTT))
}

// SaveAll écrit les fichiers sélectionnés et retourne les chemins écrits.
// S'arrête à la première erreur.
func (e *Exporter) SaveAll(r *model.Result, sel Selection) ([]string, error) {
	var paths []string
	steps := []struct {
		on   bool
		save func(*model.Result) (string, error)
	}{
		{sel.Transcript, e.SaveTranscript},
		{sel.SRT, e.SaveSRT},
		{sel.VTT, e.SaveVTT},
	}
	for _, s := range steps {
		if !s.on {
			continue
		}
		p, err := s.save(r)
		if errors.Is(err, ErrNoVTT) {
			e.logger.Warn("vtt skipped, none in result")
			continue
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Download récupère le document f (srt ou vtt) depuis le cache du service et
// l'écrit sur disque. Retourne ErrNotCached si le résultat n'a pas de cache_key.
func (e *Exporter) Download(ctx context.Context, f model.Format, r *model.Result) (string, error) {
	if r == nil {
		return "", ErrNoResult
	}
	if !r.Cached() {
		return "", ErrNotCached
	}
	if !f.IsSubtitle() {
		return "", fmt.Errorf("format %q non téléchargeable", f)
	}
	if e.dl == nil {
		return "", fmt.Errorf("aucun client de téléchargement configuré")
	}
	data, err := e.dl.DownloadSubtitles(ctx, f, r.OriginalURL)
	if err != nil {
		return "", err
	}
	return e.write(r, f, data)
}
