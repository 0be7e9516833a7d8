package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "http://localhost:8000", cfg.Colorizer.APIURL)
	assert.Equal(t, 60*time.Second, cfg.Colorizer.Timeout)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxBytes)
	assert.Equal(t, 20, cfg.Worker.Concurrency)
}

func TestLoad_TimeoutFromEnv(t *testing.T) {
	t.Setenv("DEOLDIFY_API_TIMEOUT_MS", "2500")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, cfg.Colorizer.Timeout)
}

func TestValidate_Rejects(t *testing.T) {
	base := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	noURL := base()
	noURL.Colorizer.APIURL = ""
	assert.Error(t, noURL.Validate())

	badTimeout := base()
	badTimeout.Colorizer.Timeout = 0
	assert.Error(t, badTimeout.Validate())

	badUpload := base()
	badUpload.Upload.MaxBytes = -1
	assert.Error(t, badUpload.Validate())

	badWorkers := base()
	badWorkers.Worker.Concurrency = 0
	assert.Error(t, badWorkers.Validate())
}
