// Package assistant relays chat conversations to an OpenAI-compatible
// chat-completions API using the user's saved AI settings.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/koustreak/dbee/internal/errs"
	"github.com/koustreak/dbee/internal/logger"
	"github.com/koustreak/dbee/internal/settings"
)

const (
	openAIURL   = "https://api.openai.com/v1/chat/completions"
	deepSeekURL = "https://api.deepseek.com/chat/completions"

	DefaultTimeout = 60 * time.Second

	// maxErrorBody caps how much of a failed response is read for its message.
	maxErrorBody = 64 << 10
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SettingsReader supplies the saved AI settings. *settings.AIStore
// satisfies it.
type SettingsReader interface {
	Read(ctx context.Context) (*settings.AISettings, error)
}

// Config tunes a Relay. Zero values select the defaults.
type Config struct {
	Timeout          time.Duration
	OpenAIEndpoint   string
	DeepSeekEndpoint string
}

// Relay sends conversations to the configured provider.
type Relay struct {
	settings  SettingsReader
	client    *http.Client
	endpoints map[settings.Provider]string
	log       *logger.Logger
}

// New returns a Relay. log may be nil.
func New(s SettingsReader, cfg Config, log *logger.Logger) *Relay {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.OpenAIEndpoint == "" {
		cfg.OpenAIEndpoint = openAIURL
	}
	if cfg.DeepSeekEndpoint == "" {
		cfg.DeepSeekEndpoint = deepSeekURL
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Relay{
		settings: s,
		client:   &http.Client{Timeout: cfg.Timeout},
		endpoints: map[settings.Provider]string{
			settings.ProviderOpenAI:   cfg.OpenAIEndpoint,
			settings.ProviderDeepSeek: cfg.DeepSeekEndpoint,
		},
		log: log,
	}
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type apiErrorResponse struct {
	Error *struct {
		Message *string `json:"message"`
	} `json:"error"`
}

// Send posts messages to the provider and returns the first reply.
func (r *Relay) Send(ctx context.Context, messages []Message) (string, error) {
	s, err := r.settings.Read(ctx)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", errs.New(errs.ErrKindInvalidInput, "AI settings not configured. Open settings to add your API key.")
	}
	if s.APIKey == "" {
		return "", errs.New(errs.ErrKindInvalidInput, "API key is not configured")
	}

	url, ok := r.endpoints[s.Provider]
	if !ok {
		return "", errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown provider %q", s.Provider))
	}

	if messages == nil {
		messages = []Message{}
	}
	body, err := json.Marshal(completionRequest{Model: s.Model, Messages: messages})
	if err != nil {
		return "", errs.Wrap(errs.ErrKindSerialization, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errs.Wrap(errs.ErrKindInvalidInput, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	log := r.log.With().Any("provider", s.Provider).Str("model", s.Model).Logger()
	start := time.Now()

	resp, err := r.client.Do(req)
	if err != nil {
		log.ErrorWith("assistant request failed", err, nil)
		return "", mapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := parseAPIError(resp.StatusCode, raw)
		log.Warnf("assistant request rejected with status %d", resp.StatusCode)
		return "", errs.New(classifyStatus(resp.StatusCode), msg)
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", errs.Wrap(errs.ErrKindSerialization, "Failed to parse API response", err)
	}
	if len(completion.Choices) == 0 {
		return "", errs.New(errs.ErrKindQueryFailed, "No response from API")
	}

	log.DebugWith("assistant replied", map[string]any{"duration_ms": time.Since(start).Milliseconds()})
	return completion.Choices[0].Message.Content, nil
}

// parseAPIError prefers the API's own error.message.
func parseAPIError(status int, body []byte) string {
	var e apiErrorResponse
	if json.Unmarshal(body, &e) == nil && e.Error != nil && e.Error.Message != nil {
		return *e.Error.Message
	}
	return fmt.Sprintf("Request failed with status %d %s", status, http.StatusText(status))
}

func classifyStatus(status int) errs.ErrKind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return errs.ErrKindPermissionDenied
	case status == http.StatusNotFound:
		return errs.ErrKindNotFound
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return errs.ErrKindTimeout
	case status >= 400 && status < 500:
		return errs.ErrKindInvalidInput
	default:
		return errs.ErrKindConnectionFailed
	}
}

func mapError(err error) *errs.Error {
	var timeout interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		(errors.As(err, &timeout) && timeout.Timeout()) {
		return errs.Wrap(errs.ErrKindTimeout, "Request failed: timed out", err)
	}
	return errs.Wrap(errs.ErrKindConnectionFailed, "Request failed", err)
}
