package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// countingReader compte le nombre d'octets lus via Read.
type countingReader struct {
	R io.Reader
	N int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.R.Read(p)
	if n > 0 {
		c.N += int64(n)
	}
	return n, err
}

// PostJSON encode in en JSON, le POST vers rawURL et décode la réponse dans out
// (out doit être un pointeur, ou nil pour ignorer le corps).
// Hors 2xx : retourne *StatusError avec le corps brut.
func (c *Client) PostJSON(ctx context.Context, rawURL string, hdr http.Header, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("fetch json: encode: %w", err)
	}

	h := hdr.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")

	resp, cancel, err := c.do(ctx, http.MethodPost, rawURL, h, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer cancel()
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	return c.decodeInto(resp, out)
}

// decodeInto décode le JSON directement depuis le corps limité et détecte
// un dépassement de MaxBytes via le compteur.
func (c *Client) decodeInto(resp *http.Response, dst any) error {
	if resp.ContentLength > 0 && resp.ContentLength > c.MaxBytes {
		return fmt.Errorf("fetch json: content-length %d exceeds limit %d: %w", resp.ContentLength, c.MaxBytes, ErrTooLarge)
	}

	limitReader := io.LimitReader(resp.Body, c.MaxBytes+1) // +1 pour détecter dépassement
	cr := &countingReader{R: limitReader}
	dec := json.NewDecoder(cr)

	if err := dec.Decode(dst); err != nil {
		if cr.N > c.MaxBytes {
			return ErrTooLarge
		}
		return fmt.Errorf("fetch json: decode: %w", err)
	}

	if cr.N > c.MaxBytes {
		return ErrTooLarge
	}
	return nil
}
