package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// GetTestLogger returns a development logger quiet enough for parallel test
// runs; only errors get through.
func GetTestLogger(t *testing.T) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)

	logger, err := cfg.Build()
	require.NoError(t, err)

	return logger
}
