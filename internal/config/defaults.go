package config

const (
	defaultDataDir  = "~/.local/share/rejourney"
	defaultLogDir   = "~/.local/share/rejourney/logs"
	defaultAPIBind  = "127.0.0.1:7919"
	defaultSocket   = "~/.local/share/rejourney/rejourneyd.sock"
	defaultLockFile = "~/.local/share/rejourney/rejourneyd.lock"

	defaultTickIntervalMillis = 16
	defaultRate               = 1.0
	defaultFallbackDuration   = 60.0

	defaultPreloadEagerBatch      = 5
	defaultPreloadBackgroundBatch = 30
	defaultPreloadWorkers         = 4
	defaultPreloadRequestTimeout  = 10
	defaultPreloadCacheLimit      = 200

	defaultDensityBucketCount = 40

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
			Socket:   defaultSocket,
			LockFile: defaultLockFile,
		},
		Playback: Playback{
			TickIntervalMillis:      defaultTickIntervalMillis,
			DefaultRate:             defaultRate,
			FallbackDurationSeconds: defaultFallbackDuration,
		},
		Preload: Preload{
			Enabled:         true,
			EagerBatch:      defaultPreloadEagerBatch,
			BackgroundBatch: defaultPreloadBackgroundBatch,
			Workers:         defaultPreloadWorkers,
			RequestTimeout:  defaultPreloadRequestTimeout,
			CacheLimit:      defaultPreloadCacheLimit,
		},
		Density: Density{
			BucketCount: defaultDensityBucketCount,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
