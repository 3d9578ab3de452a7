package llm

import (
	"context"
	"fmt"
)

// NewProvider builds the configured provider. Real providers are wrapped so
// that every attempt is recorded by rec and transient failures are retried;
// rec may be nil.
func NewProvider(ctx context.Context, cfg Config, rec Recorder) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case ProviderMock:
		return NewMockProvider(), nil
	case ProviderAnthropic:
		base, err = newAnthropic(cfg)
	case ProviderOpenAI:
		base, err = newOpenAI(cfg)
	case ProviderOpenRouter:
		base, err = newOpenRouter(cfg)
	case ProviderGemini:
		base, err = newGemini(ctx, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", cfg.Provider, err)
	}

	p := base
	if rec != nil {
		p = WithLogging(p, cfg.Provider, rec)
	}
	retry := cfg.Retry
	if retry.MaxAttempts == 0 {
		retry = DefaultRetry()
	}
	p = WithRetry(p, retry)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return WithTimeout(p, timeout), nil
}
