package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.Backend)
	assert.Equal(t, "http://localhost:11434", cfg.OllamaHost)
	assert.Equal(t, "0.0.0.0:7860", cfg.ListenAddr())
	assert.False(t, cfg.Share)
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("SERVER_NAME", "127.0.0.1")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("BACKEND", "claude")
	t.Setenv("CLAUDE_API_KEY", "sk-test123")
	t.Setenv("SHARE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr())
	assert.Equal(t, "claude", cfg.Backend)
	assert.Equal(t, "sk-test123", cfg.ClaudeAPIKey)
	assert.True(t, cfg.Share)
}

func TestLoadBadPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "70000")

	_, err := Load()
	assert.Error(t, err)
}
