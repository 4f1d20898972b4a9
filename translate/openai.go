package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/use-agent/clipper/models"
)

// LLM translates through an OpenAI-compatible chat completions API.
// It uses net/http directly; no third-party SDK is needed.
type LLM struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	target     string
}

// Ensure LLM implements Translator at compile time.
var _ Translator = (*LLM)(nil)

// LLMConfig configures an LLM translator.
type LLMConfig struct {
	BaseURL        string // e.g. "https://api.openai.com/v1"
	APIKey         string
	Model          string
	TargetLanguage string
	Timeout        time.Duration
}

// NewLLM builds an LLM translator.
func NewLLM(cfg LLMConfig) *LLM {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	target := cfg.TargetLanguage
	if target == "" {
		target = "Japanese"
	}
	return &LLM{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		target:     target,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (l *LLM) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	body, err := json.Marshal(chatRequest{
		Model: l.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(l.target)},
			{Role: "user", Content: text},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.apiKey)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeTranslationFailed, "translation request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeTranslationFailed, "failed to read translation response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyError(resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", models.NewScrapeError(models.ErrCodeTranslationFailed, "failed to parse translation response", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", models.NewScrapeError(models.ErrCodeTranslationFailed, "translation returned no choices", nil)
	}
	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

func systemPrompt(target string) string {
	return fmt.Sprintf(`You are a translator. Translate the user's text into %s.

Rules:
- Return ONLY the translation, no commentary.
- Preserve HTML tags and attributes exactly; translate only the text between them.
- Keep proper nouns, code and URLs unchanged.`, target)
}

// classifyError maps HTTP status codes to error codes.
func classifyError(statusCode int, body []byte) *models.ScrapeError {
	var errResp chatErrorResponse
	msg := "translation API error"
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		msg = errResp.Error.Message
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return models.NewScrapeError(models.ErrCodeUnauthorized, msg, nil)
	case http.StatusTooManyRequests:
		return models.NewScrapeError(models.ErrCodeRateLimited, msg, nil)
	default:
		return models.NewScrapeError(models.ErrCodeTranslationFailed, fmt.Sprintf("translation API returned %d: %s", statusCode, msg), nil)
	}
}
