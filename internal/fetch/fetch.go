// Package fetch fournit des utilitaires légers et testables pour parler HTTP
// au service de transcription : GET d'octets bornés et POST JSON.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultMaxBytes  = 10_000_000
	DefaultUserAgent = "ReelScribe/1.0"
)

// Erreurs exportées
var (
	ErrTooLarge = errors.New("response body too large")
)

// StatusError : le serveur a répondu hors 2xx. Body contient le texte brut de la réponse.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if b := strings.TrimSpace(e.Body); b != "" {
		return fmt.Sprintf("unexpected http status %s: %s", e.Status, b)
	}
	return fmt.Sprintf("unexpected http status %s", e.Status)
}

// Client regroupe le http.Client et les limites communes.
// Timeout <= 0 : aucun timeout imposé ici (laissé au contexte de l'appelant).
type Client struct {
	HTTP      *http.Client
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string
}

// New construit un Client avec les valeurs par défaut.
func New(httpClient *http.Client, timeout time.Duration, maxBytes int64) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Client{
		HTTP:      httpClient,
		Timeout:   timeout,
		MaxBytes:  maxBytes,
		UserAgent: DefaultUserAgent,
	}
}

// GetBytes télécharge rawURL et retourne les octets.
// - ctx peut être nil.
// - hdr : en-têtes additionnels (peut être nil).
// Note : cette fonction lit tout en mémoire (OK pour des sous-titres).
func (c *Client) GetBytes(ctx context.Context, rawURL string, hdr http.Header) ([]byte, error) {
	resp, cancel, err := c.do(ctx, http.MethodGet, rawURL, hdr, nil)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer resp.Body.Close()

	return c.readAll(resp)
}

// do prépare et exécute la requête, puis vérifie le statut.
// L'appelant doit fermer resp.Body puis appeler cancel.
func (c *Client) do(ctx context.Context, method, rawURL string, hdr http.Header, body io.Reader) (*http.Response, context.CancelFunc, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// valider l'URL tôt
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, nil, fmt.Errorf("fetch: invalid url %q: %w", rawURL, err)
	}

	cancel := context.CancelFunc(func() {})
	if c.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("fetch: new request: %w", err)
	}
	for k, vs := range hdr {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("fetch: request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer cancel()
		defer resp.Body.Close()
		// le corps d'erreur est le message à montrer à l'utilisateur
		b, _ := io.ReadAll(io.LimitReader(resp.Body, c.MaxBytes))
		return nil, nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, Body: string(b)}
	}
	return resp, cancel, nil
}

// readAll lit le corps en respectant MaxBytes.
func (c *Client) readAll(resp *http.Response) ([]byte, error) {
	// si Content-Length connu et supérieur à MaxBytes -> échouer vite
	if resp.ContentLength > 0 && resp.ContentLength > c.MaxBytes {
		return nil, fmt.Errorf("fetch: content-length %d exceeds limit %d: %w", resp.ContentLength, c.MaxBytes, ErrTooLarge)
	}

	r := io.LimitReader(resp.Body, c.MaxBytes+1) // +1 pour détecter dépassement
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}
	if int64(len(data)) > c.MaxBytes {
		return nil, fmt.Errorf("fetch: body too large (>%d bytes): %w", c.MaxBytes, ErrTooLarge)
	}
	return data, nil
}
