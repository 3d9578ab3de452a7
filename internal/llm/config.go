package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects and configures one provider.
type Config struct {
	Provider string
	APIKey   string
	// Model may be a friendly alias ("claude-haiku", "gemini-flash") or a
	// provider model id. Empty means the provider default.
	Model   string
	BaseURL string
	Retry   RetryConfig
	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

// RetryConfig configures backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

var defaultModels = map[string]string{
	ProviderAnthropic:  "claude-haiku",
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderGemini:     "gemini-flash",
	ProviderOpenRouter: "google/gemini-2.0-flash-exp",
}

// modelAliases maps friendly names onto concrete model ids.
var modelAliases = map[string]string{
	"claude-sonnet": "claude-sonnet-4-20250514",
	"claude-haiku":  "claude-haiku-4-5-20251001",
	"gemini-flash":  "gemini-2.0-flash",
	"gemini-pro":    "gemini-2.0-pro",
}

// DefaultRetry is three attempts starting at one second.
func DefaultRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Second,
		MaxWait:     10 * time.Second,
		Multiplier:  2,
	}
}

// DefaultTimeout is applied when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// wellKnownKeys are probed by DiscoverConfig in order.
var wellKnownKeys = []struct {
	env      string
	provider string
}{
	{"ANTHROPIC_API_KEY", ProviderAnthropic},
	{"OPENAI_API_KEY", ProviderOpenAI},
	{"GEMINI_API_KEY", ProviderGemini},
	{"OPENROUTER_API_KEY", ProviderOpenRouter},
}

// DiscoverConfig looks for a vendor API key in the environment and returns
// a config for the first provider found.
func DiscoverConfig() (Config, bool) {
	for _, k := range wellKnownKeys {
		if v := os.Getenv(k.env); v != "" {
			return Config{
				Provider: k.provider,
				APIKey:   v,
				Retry:    DefaultRetry(),
				Timeout:  DefaultTimeout,
			}, true
		}
	}
	return Config{}, false
}

// ResolvedModel returns the concrete model id for the configured provider.
func (c Config) ResolvedModel() string {
	m := c.Model
	if m == "" {
		m = defaultModels[c.Provider]
	}
	if id, ok := modelAliases[m]; ok {
		return id
	}
	return m
}

// Validate reports configuration that NewProvider would reject.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderMock:
		return nil
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderOpenRouter:
		if c.APIKey == "" {
			return fmt.Errorf("llm.api_key (GAKUROKU_LLM_API_KEY) is required for the %s provider", c.Provider)
		}
		return nil
	case "":
		return fmt.Errorf("no LLM provider configured")
	default:
		return fmt.Errorf("unknown LLM provider %q", c.Provider)
	}
}
