package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MinterTeam/minter-presale/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_File(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.LogPath = filepath.Join(t.TempDir(), "presale.log")
	cfg.LogFormat = config.LogFormatJSON
	cfg.LogLevel = "presale:info,*:error"

	logger, err := NewLogger(cfg)
	require.NoError(t, err)

	logger.With("module", "presale").Info("committed", "height", 1)
	logger.With("module", "api").Info("filtered out")

	content, err := os.ReadFile(cfg.LogPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"_msg":"committed"`)
	assert.NotContains(t, string(content), "filtered out")
}

func TestNewLogger_Errors(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.LogFormat = "xml"
	_, err := NewLogger(cfg)
	assert.Error(t, err)

	cfg = config.DefaultConfig()
	cfg.LogLevel = "presale:loud"
	_, err = NewLogger(cfg)
	assert.Error(t, err)
}
