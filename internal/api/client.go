package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/patrickprogramme/reelscribe/internal/fetch"
	"github.com/patrickprogramme/reelscribe/pkg/model"
)

// DefaultBaseURL : service local par défaut.
const DefaultBaseURL = "http://127.0.0.1:8000"

// RequestIDHeader porte l'identifiant de corrélation de chaque appel.
const RequestIDHeader = "X-Request-Id"

// Interface est l'abstraction utilisée par le cycle de vie. Elle facilite le test
// en autorisant une implémentation factice dans les tests.
type Interface interface {
	Transcribe(ctx context.Context, url string) (*TranscribeResponse, error)
	Refine(ctx context.Context, text string) (*RefineResponse, error)
}

// TranscribeResponse : corps de réponse de POST /api/transcribe.
type TranscribeResponse struct {
	Transcript string          `json:"transcript"`
	Subtitles  []model.Segment `json:"subtitles"`
	Meta       model.Meta      `json:"meta"`
	VTT        string          `json:"vtt"`
}

// RefineResponse : corps de réponse de POST /api/refine.
type RefineResponse struct {
	CleanedTranscript string `json:"cleaned_transcript"`
	Transcript        string `json:"transcript"`
}

// Text retourne cleaned_transcript, ou transcript si le premier est absent.
func (r RefineResponse) Text() string {
	if r.CleanedTranscript != "" {
		return r.CleanedTranscript
	}
	return r.Transcript
}

type transcribeRequest struct {
	URL string `json:"url"`
}

type refineRequest struct {
	Text string `json:"text"`
}

// Config : paramètres du client, issus de la config applicative.
type Config struct {
	BaseURL  string
	Timeout  time.Duration // 0 => pas de timeout
	MaxBytes int64
	HTTP     *http.Client
	Logger   *slog.Logger
}

// Client parle au service de transcription.
type Client struct {
	base   string
	fetch  *fetch.Client
	logger *slog.Logger
}

// NewClient construit un Client ; BaseURL vide => DefaultBaseURL.
func NewClient(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		base:   base,
		fetch:  fetch.New(cfg.HTTP, cfg.Timeout, cfg.MaxBytes),
		logger: logger.With("component", "api"),
	}
}

// BaseURL retourne l'hôte effectif (sans slash final).
func (c *Client) BaseURL() string { return c.base }

// Transcribe soumet l'URL au service.
func (c *Client) Transcribe(ctx context.Context, u string) (*TranscribeResponse, error) {
	var out TranscribeResponse
	if err := c.post(ctx, "/api/transcribe", transcribeRequest{URL: u}, &out); err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	return &out, nil
}

// Refine demande au service une version corrigée du texte.
func (c *Client) Refine(ctx context.Context, text string) (*RefineResponse, error) {
	var out RefineResponse
	if err := c.post(ctx, "/api/refine", refineRequest{Text: text}, &out); err != nil {
		return nil, fmt.Errorf("refine: %w", err)
	}
	return &out, nil
}

// SubtitlesURL construit le lien de téléchargement (subtitles.srt / subtitles.vtt)
// pour l'URL d'origine.
func (c *Client) SubtitlesURL(f model.Format, originalURL string) (string, error) {
	if !f.IsSubtitle() {
		return "", fmt.Errorf("format %q non téléchargeable", f)
	}
	return fmt.Sprintf("%s/api/subtitles%s?url=%s", c.base, f.Extension(), url.QueryEscape(originalURL)), nil
}

// DownloadSubtitles récupère le document de sous-titres mis en cache par le service.
func (c *Client) DownloadSubtitles(ctx context.Context, f model.Format, originalURL string) ([]byte, error) {
	link, err := c.SubtitlesURL(f, originalURL)
	if err != nil {
		return nil, err
	}
	hdr, rid := c.headers()
	start := time.Now()
	data, err := c.fetch.GetBytes(ctx, link, hdr)
	c.logger.Debug("GET subtitles", "format", f, "request_id", rid, "elapsed", time.Since(start), "error", err)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", f, err)
	}
	return data, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	hdr, rid := c.headers()
	start := time.Now()
	err := c.fetch.PostJSON(ctx, c.base+path, hdr, in, out)
	c.logger.Debug("POST", "path", path, "request_id", rid, "elapsed", time.Since(start), "error", err)
	return err
}

func (c *Client) headers() (http.Header, string) {
	rid := uuid.NewString()
	hdr := http.Header{}
	hdr.Set(RequestIDHeader, rid)
	return hdr, rid
}
