package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hyperlane-xyz/lander/dispatcher/config"
	"github.com/hyperlane-xyz/lander/util"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()
	cfg := config.DefaultConfigWithHome(t.TempDir())
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name   string
		mutate func(cfg *config.Config)
		errMsg string
	}{
		{
			name:   "zero batch size",
			mutate: func(cfg *config.Config) { cfg.BatchSize = 0 },
			errMsg: "batch size must be positive",
		},
		{
			name:   "oversized batch",
			mutate: func(cfg *config.Config) { cfg.BatchSize = config.MaxBatchSize + 1 },
			errMsg: "batch size must not exceed",
		},
		{
			name:   "zero channel buffer",
			mutate: func(cfg *config.Config) { cfg.ChannelBufferSize = 0 },
			errMsg: "channel buffer size must be positive",
		},
		{
			name:   "non-positive poll interval",
			mutate: func(cfg *config.Config) { cfg.QueuePollInterval = 0 },
			errMsg: "queue poll interval must be positive",
		},
		{
			name:   "zero submission attempts",
			mutate: func(cfg *config.Config) { cfg.MaxSubmissionAttempts = 0 },
			errMsg: "max submission attempts must be positive",
		},
		{
			name:   "missing db config",
			mutate: func(cfg *config.Config) { cfg.DatabaseConfig = nil },
			errMsg: "db configuration cannot be empty",
		},
		{
			name:   "missing metrics config",
			mutate: func(cfg *config.Config) { cfg.Metrics = nil },
			errMsg: "metrics configuration cannot be empty",
		},
		{
			name:   "bad metrics host",
			mutate: func(cfg *config.Config) { cfg.Metrics.Host = "not-an-ip" },
			errMsg: "metrics configuration validation failed",
		},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.DefaultConfigWithHome(t.TempDir())
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()
	_, err := config.LoadConfig(t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestDBConfigDefaults(t *testing.T) {
	t.Parallel()
	home := t.TempDir()
	cfg := config.DefaultDBConfigWithHomePath(home)

	require.Equal(t, config.DataDir(home), cfg.DBPath)
	require.Equal(t, "lander.db", cfg.DBFileName)
	require.Greater(t, cfg.DBTimeout, time.Duration(0))

	db, err := cfg.GetDBBackend()
	require.NoError(t, err)
	require.NoError(t, db.Close())
	require.True(t, util.FileExists(config.DataDir(home)))
}
