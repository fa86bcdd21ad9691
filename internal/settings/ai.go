package settings

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/koustreak/dbee/internal/errs"
	"github.com/koustreak/dbee/internal/filestore"
)

// Provider names a chat-completions API.
type Provider string

const (
	ProviderOpenAI   Provider = "openai"
	ProviderDeepSeek Provider = "deepseek"
)

const maxModelLen = 100

// AISettings configures the assistant. It is a single global record.
type AISettings struct {
	Provider Provider `json:"provider"`
	APIKey   string   `json:"apiKey"`
	Model    string   `json:"model"`
}

// Validate checks the provider and model name.
func (s *AISettings) Validate() error {
	switch s.Provider {
	case ProviderOpenAI, ProviderDeepSeek:
	default:
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown provider %q", s.Provider))
	}
	if strings.TrimSpace(s.Model) == "" {
		return errs.New(errs.ErrKindInvalidInput, "Model name is required")
	}
	if len(s.Model) > maxModelLen {
		return errs.New(errs.ErrKindInvalidInput, "Model name is too long")
	}
	return nil
}

// PublicAISettings is AISettings without the key.
type PublicAISettings struct {
	Provider  Provider `json:"provider"`
	HasAPIKey bool     `json:"hasApiKey"`
	Model     string   `json:"model"`
}

// Public returns the view of s that is safe to hand to a client.
func (s *AISettings) Public() *PublicAISettings {
	return &PublicAISettings{
		Provider:  s.Provider,
		HasAPIKey: s.APIKey != "",
		Model:     s.Model,
	}
}

// AIStore persists AISettings.
type AIStore struct {
	mu    sync.Mutex
	store filestore.Store
}

func NewAIStore(store filestore.Store) *AIStore {
	return &AIStore{store: store}
}

// Read returns the saved settings, or nil if none were saved.
func (a *AIStore) Read(ctx context.Context) (*AISettings, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var s AISettings
	found, err := readJSON(ctx, a.store, aiSettingsFile, &s)
	if err != nil || !found {
		return nil, err
	}
	switch s.Provider {
	case ProviderOpenAI, ProviderDeepSeek:
	default:
		return nil, errs.New(errs.ErrKindSerialization, fmt.Sprintf("failed to parse %s: unknown provider %q", aiSettingsFile, s.Provider))
	}
	return &s, nil
}

// Save validates and replaces the settings.
func (a *AIStore) Save(ctx context.Context, s AISettings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return writeJSON(ctx, a.store, aiSettingsFile, s)
}
