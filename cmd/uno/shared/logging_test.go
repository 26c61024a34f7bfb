package shared

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLoggerToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uno.log")
	logger, closeFn, err := SetupLogger("debug", path)
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, logger.GetLevel())

	logger.Info("episode complete", "episode", 3)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "episode complete")
	assert.Contains(t, string(data), "episode=3")
}

func TestSetupLoggerRejectsLevel(t *testing.T) {
	_, _, err := SetupLogger("loud", "")
	assert.Error(t, err)
}
