package config

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_ValidateBasic(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, cfg.ValidateBasic())

	cfg.KeepLastStates = 0
	assert.Error(t, cfg.ValidateBasic())

	cfg = DefaultConfig()
	cfg.LogFormat = "xml"
	assert.Error(t, cfg.ValidateBasic())

	cfg = DefaultConfig()
	cfg.StateMemAvailable = 512
	assert.Error(t, cfg.ValidateBasic())
}

func TestRenderConfig_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.KeepLastStates = 7
	cfg.EventsEnabled = false
	cfg.Instrumentation.Prometheus = true

	rendered, err := RenderConfig(cfg)
	require.NoError(t, err)

	v := viper.New()
	v.SetConfigType("toml")
	require.NoError(t, v.ReadConfig(bytes.NewReader(rendered)))

	loaded := DefaultConfig()
	require.NoError(t, v.Unmarshal(loaded))

	assert.Equal(t, int64(7), loaded.KeepLastStates)
	assert.False(t, loaded.EventsEnabled)
	assert.True(t, loaded.Instrumentation.Prometheus)
	assert.Equal(t, "presale", loaded.Instrumentation.Namespace)
	assert.Equal(t, cfg.APIListenAddress, loaded.APIListenAddress)
	assert.Equal(t, cfg.LogLevel, loaded.LogLevel)
}

func TestEnsureRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	EnsureRoot(root)

	assert.FileExists(t, ConfigFilePath(root))
	assert.DirExists(t, filepath.Join(root, defaultDataDir))

	cfg := DefaultConfig().SetRoot(root)
	assert.Equal(t, filepath.Join(root, "config", "genesis.json"), cfg.GenesisFile())
	assert.Equal(t, filepath.Join(root, "data"), cfg.DBDir())
}
