package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesHistoricalConstants(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 54197, cfg.PortBase)
	assert.Equal(t, 2, cfg.MaxConnections)
	assert.Equal(t, 54197, cfg.Port())
}

func TestPortAddsAdapterIndex(t *testing.T) {
	cfg := Default()
	cfg.Adapter = 1
	assert.Equal(t, 54198, cfg.Port())
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dvbctld.ini")
	contents := `
[daemon]
adapter = 2
max_connections = 5
streamer_name = my-streamer

[auth]
username = admin
password = secret

[metrics]
listen_addr = :9090
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Adapter)
	assert.Equal(t, 5, cfg.MaxConnections)
	assert.Equal(t, "my-streamer", cfg.StreamerName)
	assert.Equal(t, "admin", cfg.Username)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, 54199, cfg.Port())
}

func TestLoadRejectsNonPositiveMaxConnections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.ini")
	require.NoError(t, os.WriteFile(path, []byte("[daemon]\nmax_connections = 0\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/dvbctld.ini")
	assert.Error(t, err)
}
