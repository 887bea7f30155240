package aitools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/btechub/portal-backend/internal/config"
)

var (
	ErrPromptRequired = errors.New("prompt is required")
	ErrImageAuth      = errors.New("image service rejected credentials")
	ErrImageFailed    = errors.New("all image models failed")
)

// maxImageBytes caps how much of an upstream image body is read.
const maxImageBytes = 10 << 20

// ImageGenerator walks an ordered model list until one returns an image.
type ImageGenerator struct {
	url    string
	key    string
	models []string
	client *http.Client
}

func NewImageGenerator(cfg *config.Config) *ImageGenerator {
	timeout := cfg.AITimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &ImageGenerator{
		url:    cfg.HFAPIURL,
		key:    cfg.HFAPIKey,
		models: cfg.HFImageModels,
		client: &http.Client{Timeout: timeout},
	}
}

// Generate returns the image bytes and the model that produced them. A
// 401/403 stops the chain at once; any other failure moves to the next model.
func (g *ImageGenerator) Generate(ctx context.Context, prompt string) ([]byte, string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, "", ErrPromptRequired
	}
	if g.key == "" {
		return nil, "", fmt.Errorf("%w: no API key configured", ErrImageAuth)
	}

	if len(g.models) == 0 {
		return nil, "", fmt.Errorf("%w: no image models configured", ErrImageFailed)
	}

	var failures []error
	for _, model := range g.models {
		img, err := g.callModel(ctx, model, prompt)
		if err == nil {
			return img, model, nil
		}
		if errors.Is(err, ErrImageAuth) {
			return nil, "", err
		}
		slog.Warn("image model failed", "model", model, "error", err)
		failures = append(failures, fmt.Errorf("%s: %w", model, err))
	}
	return nil, "", fmt.Errorf("%w: %w", ErrImageFailed, errors.Join(failures...))
}

func (g *ImageGenerator) callModel(ctx context.Context, model, prompt string) ([]byte, error) {
	body, err := json.Marshal(map[string]string{"inputs": prompt})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url+model, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/jpeg")
	req.Header.Set("Authorization", "Bearer "+g.key)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s returned %d", ErrImageAuth, model, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(data), 200))
	case len(data) == 0:
		return nil, errors.New("empty image body")
	case strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json"):
		return nil, fmt.Errorf("unexpected JSON body: %s", truncate(string(data), 200))
	}
	return data, nil
}
