package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, key := range []string{"PORT", "ALPHA", "MAX_PARALLEL", "DATABASE_URL"} {
			t.Setenv(key, "")
		}

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, 0.05, cfg.Analysis.Alpha)
		assert.Equal(t, int64(4), cfg.Analysis.MaxParallel)
		assert.False(t, cfg.Database.Enabled)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("ALPHA", "0.01")
		t.Setenv("MAX_PARALLEL", "8")
		t.Setenv("DATABASE_URL", "postgres://localhost/runs")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, 0.01, cfg.Analysis.Alpha)
		assert.Equal(t, int64(8), cfg.Analysis.MaxParallel)
		assert.True(t, cfg.Database.Enabled)
		assert.Equal(t, "postgres://localhost/runs", cfg.Database.URL)
	})

	t.Run("alpha out of range", func(t *testing.T) {
		t.Setenv("ALPHA", "1.5")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("invalid parallelism", func(t *testing.T) {
		t.Setenv("MAX_PARALLEL", "0")
		_, err := Load()
		assert.Error(t, err)
	})
}
