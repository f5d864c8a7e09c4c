package testutil

import (
	"testing"

	"advanced-calculator/internal/config"
)

// NewConfig returns a default configuration rooted in a per-test temp dir.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()
	return config.Default(t.TempDir())
}
