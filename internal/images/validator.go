package images

import (
	"bytes"
	"image"
	"io"
	"log/slog"
	"net/http"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

const (
	// Minimum pixel floor for a usable article image. Anything smaller is a
	// thumbnail or a tracking pixel, not card material.
	MinWidth  = 400
	MinHeight = 250

	maxDownloadBytes = 20 << 20
)

// ValidatedImage is a decoded-checked download together with its measured
// dimensions. Only the Validator produces these.
type ValidatedImage struct {
	Bytes  []byte
	Width  int
	Height int
}

// Validator downloads candidate image URLs and accepts or rejects them. It
// never retries; fallback across candidates is the Resolver's job.
type Validator struct {
	client *http.Client
}

// NewValidator wires an HTTP client; a nil client gets a bounded timeout.
func NewValidator(client *http.Client) *Validator {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Validator{client: client}
}

// Validate fetches url and returns the image when it decodes and meets the
// dimension floor. Any network error, non-success status, undecodable body or
// undersized image yields nil.
func (v *Validator) Validate(url string) *ValidatedImage {
	resp, err := v.client.Get(url)
	if err != nil {
		slog.Debug("image fetch failed", "url", url, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("image fetch non-success", "url", url, "status", resp.StatusCode)
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		slog.Debug("image body read failed", "url", url, "error", err)
		return nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		slog.Debug("image decode failed", "url", url, "error", err)
		return nil
	}
	if cfg.Width < MinWidth || cfg.Height < MinHeight {
		slog.Debug("image below dimension floor", "url", url, "width", cfg.Width, "height", cfg.Height)
		return nil
	}

	return &ValidatedImage{Bytes: data, Width: cfg.Width, Height: cfg.Height}
}
