package testsupport

import (
	"path/filepath"
	"testing"

	"rejourney/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.Socket = filepath.Join(base, "rejourney.sock")
	cfgVal.Paths.LockFile = filepath.Join(base, "rejourney.lock")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Preload.Enabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithPreload enables the frame preloader on the test config.
func WithPreload() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Preload.Enabled = true
	}
}

// WithTickInterval overrides the playback tick cadence in milliseconds.
func WithTickInterval(millis int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Playback.TickIntervalMillis = millis
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
