package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gakuroku/gakuroku/internal/llm"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points config and .env lookups at empty temp directories and
// clears variables that would leak in from the developer's shell.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "data"))
	t.Chdir(t.TempDir())
	for _, k := range []string{
		"GAKUROKU_DB", "GAKUROKU_API_URL", "GAKUROKU_API_TOKEN", "GAKUROKU_SERVER_ADDR",
		"GAKUROKU_LLM_PROVIDER", "GAKUROKU_LLM_API_KEY", "GAKUROKU_LLM_MODEL",
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.False(t, cfg.Remote())

	path, err := cfg.DBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data", "gakuroku", "gakuroku.db"), path)
	assert.DirExists(t, filepath.Dir(path))

	_, ok := cfg.LLM()
	assert.False(t, ok)
}

func TestLoadPrecedence(t *testing.T) {
	home := isolate(t)

	dir := filepath.Join(home, "config", "gakuroku")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
api:
  url: http://file.example/
  token: from-file
server:
  addr: ":9000"
  cors_origins: ["http://localhost:5173"]
`), 0o644))
	t.Setenv("GAKUROKU_API_TOKEN", "from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("api-url", "", "")
	flags.String("db", "", "")
	require.NoError(t, flags.Parse([]string{"--api-url", "http://flag.example"}))

	cfg, err := Load(flags)
	require.NoError(t, err)
	assert.Equal(t, "http://flag.example", cfg.API.URL, "flag beats file")
	assert.Equal(t, "from-env", cfg.API.Token, "env beats file")
	assert.Equal(t, ":9000", cfg.Server.Addr, "file beats default")
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "", cfg.DB, "unset flag does not override")
	assert.True(t, cfg.Remote())
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("GAKUROKU_SERVER_ADDR=:7000\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("GAKUROKU_SERVER_ADDR") })
	os.Unsetenv("GAKUROKU_SERVER_ADDR")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	isolate(t)
	t.Setenv("GAKUROKU_API_TIMEOUT", "0s")

	_, err := Load(nil)
	assert.ErrorContains(t, err, "api.timeout")
}

func TestLLM(t *testing.T) {
	isolate(t)
	t.Setenv("GAKUROKU_LLM_PROVIDER", "openai")
	t.Setenv("GAKUROKU_LLM_API_KEY", "sk-test")
	t.Setenv("GAKUROKU_LLM_MODEL", "gpt-4.1")
	t.Setenv("GAKUROKU_LLM_MAX_RETRIES", "5")

	cfg, err := Load(nil)
	require.NoError(t, err)
	lc, ok := cfg.LLM()
	require.True(t, ok)
	assert.Equal(t, llm.ProviderOpenAI, lc.Provider)
	assert.Equal(t, "sk-test", lc.APIKey)
	assert.Equal(t, "gpt-4.1", lc.ResolvedModel())
	assert.Equal(t, 5, lc.Retry.MaxAttempts)
	assert.Equal(t, 30*time.Second, lc.Timeout)
	assert.NoError(t, lc.Validate())
}

func TestLLMDiscovery(t *testing.T) {
	isolate(t)
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("GAKUROKU_LLM_MODEL", "gemini-pro")

	cfg, err := Load(nil)
	require.NoError(t, err)
	lc, ok := cfg.LLM()
	require.True(t, ok)
	assert.Equal(t, llm.ProviderGemini, lc.Provider)
	assert.Equal(t, "gemini-2.0-pro", lc.ResolvedModel())
}
