package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/bandup/internal/store"
)

// Media bundles the optional synthesis capabilities. A nil field means the
// capability is unavailable and the feature degrades silently.
type Media struct {
	Speech SpeechSynthesizer
	Image  ImageSynthesizer
}

// NewProvider creates a Provider from configuration, wrapped with retry and
// logging middleware (caller → retry → logging → base).
func NewProvider(ctx context.Context, cfg Config, requests store.RequestRepo) (Provider, error) {
	base, err := newBaseProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Provider == "mock" {
		return base, nil
	}

	logged := WithLogging(base, requests)
	return WithRetry(logged, cfg.Retry), nil
}

// NewMedia creates the speech/image capabilities. Gemini is the only
// backend carrying them, so media works whenever a Gemini key is configured
// even if chat generation runs on another provider. Without a key the
// returned Media is empty, which downstream treats as "unavailable".
func NewMedia(ctx context.Context, cfg Config) Media {
	if cfg.Provider == "mock" {
		mock := NewMockProvider()
		return Media{Speech: mock, Image: mock}
	}
	if cfg.Gemini.APIKey == "" {
		return Media{}
	}
	g, err := NewGeminiProvider(ctx, cfg.Gemini)
	if err != nil {
		return Media{}
	}
	return Media{Speech: g, Image: g}
}

func newBaseProvider(ctx context.Context, cfg Config) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown generation provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	return base, nil
}
