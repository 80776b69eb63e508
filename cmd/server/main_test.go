package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeApp(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("WORKER_CONCURRENCY", "3")

	cfg, err := initializeApp()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "error", cfg.Server.LogLevel)
	assert.Equal(t, 3, cfg.Jobs.WorkerConcurrency)
}

func TestInitializeAppRejectsBadConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")

	cfg, err := initializeApp()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}
