package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFallsBackToDefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Address, cfg.Server.Address)
}

func TestLoadReadsYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ldapwired.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  address: \"0.0.0.0:1389\"\nlogging:\n  level: debug\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:1389", cfg.Server.Address)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadOverlaysEnvironment(t *testing.T) {
	t.Setenv("LDAPWIRED_SERVER_ADDRESS", "0.0.0.0:2389")
	path := filepath.Join(t.TempDir(), "ldapwired.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  address: \"0.0.0.0:1389\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:2389", cfg.Server.Address)
}
