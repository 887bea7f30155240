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
	"unicode/utf8"

	"github.com/btechub/portal-backend/internal/config"
)

const maxHistory = 10

var (
	ErrMessageRequired    = errors.New("message is required")
	ErrAllProvidersFailed = errors.New("all LLM providers failed")
)

// --- LLM integration ---

type llmRequest struct {
	Model       string       `json:"model"`
	Messages    []llmMessage `json:"messages"`
	Temperature float64      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens"`
}

// llmMessage content is either a plain string or a list of contentParts for
// vision requests.
type llmMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type llmResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Turn is one prior exchange supplied by the client.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type provider struct {
	name        string
	url         string
	key         string
	model       string
	visionModel string
}

// LLMClient relays chat completions to the primary provider and falls back
// to the secondary one.
type LLMClient struct {
	providers []provider
	client    *http.Client
}

func NewLLMClient(cfg *config.Config) *LLMClient {
	timeout := cfg.AITimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &LLMClient{
		providers: []provider{
			{name: "glm", url: cfg.GLMAPIURL, key: cfg.GLMAPIKey, model: cfg.GLMModel, visionModel: cfg.GLMVisionModel},
			{name: "deepseek", url: cfg.DeepSeekAPIURL, key: cfg.DeepSeekAPIKey, model: cfg.DeepSeekModel},
		},
		client: &http.Client{Timeout: timeout},
	}
}

// Chat sends the system prompt, the trimmed history and the new message
// (with optional images) and returns the reply and the provider that served it.
func (c *LLMClient) Chat(ctx context.Context, systemPrompt string, history []Turn, message string, images []string) (string, string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", "", ErrMessageRequired
	}

	var lastErr error
	for _, p := range c.providers {
		if p.key == "" {
			continue
		}
		reply, err := c.callProvider(ctx, p, buildMessages(systemPrompt, history, message, images, p.visionModel != ""), modelFor(p, images))
		if err == nil {
			return reply, p.name, nil
		}
		slog.Warn("LLM provider failed", "provider", p.name, "error", err)
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no provider configured")
	}
	return "", "", fmt.Errorf("%w: %v", ErrAllProvidersFailed, lastErr)
}

func (c *LLMClient) callProvider(ctx context.Context, p provider, messages []llmMessage, model string) (string, error) {
	reqBody, err := json.Marshal(llmRequest{
		Model:       model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   2048,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.key)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var llmResp llmResponse
	if err := json.Unmarshal(body, &llmResp); err != nil {
		return "", err
	}
	if len(llmResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	content := strings.TrimSpace(llmResp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty content from API")
	}
	return content, nil
}

func modelFor(p provider, images []string) string {
	if len(images) > 0 && p.visionModel != "" {
		return p.visionModel
	}
	return p.model
}

// buildMessages keeps the last maxHistory turns. Providers without a vision
// model get the text only.
func buildMessages(systemPrompt string, history []Turn, message string, images []string, vision bool) []llmMessage {
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	msgs := make([]llmMessage, 0, len(history)+2)
	msgs = append(msgs, llmMessage{Role: "system", Content: systemPrompt})
	for _, t := range history {
		role := strings.ToLower(strings.TrimSpace(t.Role))
		if role == "model" || role == "bot" {
			role = "assistant"
		}
		if (role != "user" && role != "assistant") || strings.TrimSpace(t.Content) == "" {
			continue
		}
		msgs = append(msgs, llmMessage{Role: role, Content: t.Content})
	}

	if !vision || len(images) == 0 {
		return append(msgs, llmMessage{Role: "user", Content: message})
	}

	parts := []contentPart{{Type: "text", Text: message}}
	for _, img := range images {
		if img = strings.TrimSpace(img); validImageRef(img) {
			parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: img}})
		}
	}
	return append(msgs, llmMessage{Role: "user", Content: parts})
}

func validImageRef(ref string) bool {
	return strings.HasPrefix(ref, "data:image/") || strings.HasPrefix(ref, "https://")
}

// truncate keeps at most n bytes of s without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
