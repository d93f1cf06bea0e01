package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfigNormalisesPort(t *testing.T) {
	cases := map[string]string{
		"9090":           ":9090",
		":7000":          ":7000",
		"127.0.0.1:8000": "127.0.0.1:8000",
	}
	for port, want := range cases {
		t.Run(port, func(t *testing.T) {
			t.Setenv("PORT", port)
			cfg, err := loadServerConfig()
			require.NoError(t, err)
			assert.Equal(t, want, cfg.Addr)
		})
	}
}

func TestLoadServerConfigRejectsSpaces(t *testing.T) {
	t.Setenv("PORT", "80 80")
	_, err := loadServerConfig()
	require.Error(t, err)
}

func TestLoadAIConfig(t *testing.T) {
	t.Setenv("ARK_API_KEY", " key ")
	t.Setenv("ARK_MODEL", "doubao")
	t.Setenv("ARK_TEMPERATURE", "0.3")

	cfg, err := loadAIConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled())
	assert.Equal(t, "key", cfg.APIKey)
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.3, *cfg.Temperature, 1e-9)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
}

func TestAIConfigDisabledWithoutModel(t *testing.T) {
	cfg := AIConfig{APIKey: "key"}
	assert.False(t, cfg.Enabled())
}

func TestLoadClientDefaults(t *testing.T) {
	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/chat", cfg.Endpoint)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, 20*time.Millisecond, cfg.RevealTick)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestLoadClientRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "etcd")
	_, err := LoadClient()
	require.Error(t, err)
}

func TestLoadClientRejectsUnknownLanguage(t *testing.T) {
	t.Setenv("CHAT_LANG", "fr")
	_, err := LoadClient()
	require.Error(t, err)
}

func TestStoreOptionsKeepsExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.db")
	cfg := ClientConfig{StoreBackend: "sqlite", StorePath: path}
	opts, err := cfg.StoreOptions()
	require.NoError(t, err)
	assert.Equal(t, path, opts.Path)
	assert.Equal(t, "sqlite", opts.Backend)
}

func TestStoreOptionsDefaultsUnderConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	opts, err := ClientConfig{StoreBackend: "file"}.StoreOptions()
	require.NoError(t, err)
	assert.Equal(t, "sessions.json", filepath.Base(opts.Path))
	assert.DirExists(t, filepath.Dir(opts.Path))
}

func TestParseZerologLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseZerologLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseZerologLevel("warning"))
	assert.Equal(t, zerolog.InfoLevel, ParseZerologLevel("bogus"))
}
