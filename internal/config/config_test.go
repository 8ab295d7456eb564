package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	v, err := New("")
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.History.Enabled)
	assert.False(t, cfg.History.RememberSecrets)
	assert.Equal(t, MaxHistory, cfg.History.Limit)
	assert.Equal(t, 7*24*time.Hour, cfg.Share.DefaultExpiry)
	assert.Equal(t, "us-east-1", cfg.Connection.Region)
	assert.True(t, cfg.Connection.PathStyle)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ironshelf.yaml")
	content := `
server:
  addr: 127.0.0.1:9999
log:
  level: debug
  format: json
history:
  rememberSecrets: true
  path: ` + filepath.Join(dir, "h.db") + `
share:
  defaultExpiry: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("IRONSHELF_CONNECTION_ENDPOINT", "http://localhost:9000")

	v, err := New(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.History.RememberSecrets)
	assert.Equal(t, time.Hour, cfg.Share.DefaultExpiry)
	assert.Equal(t, "http://localhost:9000", cfg.Connection.Endpoint)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"bad log level", "log.level", "verbose"},
		{"history limit above cap", "history.limit", 6},
		{"short session key", "server.sessionKey", "short"},
		{"bad addr", "server.addr", "not an address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CONFIG_HOME", t.TempDir())
			t.Chdir(t.TempDir())

			v, err := New("")
			require.NoError(t, err)
			v.Set(tt.key, tt.val)

			_, err = Load(v)
			assert.Error(t, err)
		})
	}
}

func TestNew_MissingExplicitFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
