package main

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/amirphl/repair-desk/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, gormLogLevel("debug", false))
	assert.Equal(t, logger.Error, gormLogLevel("error", true))
	assert.Equal(t, logger.Warn, gormLogLevel("info", true))
	assert.Equal(t, logger.Error, gormLogLevel("info", false))
}

func TestInitializeLogging_File(t *testing.T) {
	defer log.SetOutput(os.Stderr)
	defer log.SetFlags(log.LstdFlags)

	path := filepath.Join(t.TempDir(), "app.log")
	closeLog := initializeLogging(config.LoggingConfig{Output: "file", FilePath: path, MaxSize: 1})
	log.Printf("ticket RPR-001 created")
	require.NoError(t, closeLog())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "ticket RPR-001 created")
}

func TestInitializeLogging_Stdout(t *testing.T) {
	closeLog := initializeLogging(config.LoggingConfig{Output: "stdout"})
	assert.NoError(t, closeLog())
}
