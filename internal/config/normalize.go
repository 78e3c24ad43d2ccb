package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePlayback()
	c.normalizePreload()
	c.normalizeDensity()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.Socket) == "" {
		c.Paths.Socket = defaultSocket
	}
	if c.Paths.Socket, err = expandPath(c.Paths.Socket); err != nil {
		return fmt.Errorf("paths.socket: %w", err)
	}
	if strings.TrimSpace(c.Paths.LockFile) == "" {
		c.Paths.LockFile = defaultLockFile
	}
	if c.Paths.LockFile, err = expandPath(c.Paths.LockFile); err != nil {
		return fmt.Errorf("paths.lock_file: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizePlayback() {
	if c.Playback.TickIntervalMillis <= 0 {
		c.Playback.TickIntervalMillis = defaultTickIntervalMillis
	}
	if c.Playback.DefaultRate <= 0 {
		c.Playback.DefaultRate = defaultRate
	}
	if c.Playback.FallbackDurationSeconds <= 0 {
		c.Playback.FallbackDurationSeconds = defaultFallbackDuration
	}
}

func (c *Config) normalizePreload() {
	if c.Preload.EagerBatch < 0 {
		c.Preload.EagerBatch = 0
	}
	if c.Preload.BackgroundBatch < c.Preload.EagerBatch {
		c.Preload.BackgroundBatch = c.Preload.EagerBatch
	}
	if c.Preload.Workers <= 0 {
		c.Preload.Workers = defaultPreloadWorkers
	}
	if c.Preload.RequestTimeout <= 0 {
		c.Preload.RequestTimeout = defaultPreloadRequestTimeout
	}
	if c.Preload.CacheLimit <= 0 {
		c.Preload.CacheLimit = defaultPreloadCacheLimit
	}
}

func (c *Config) normalizeDensity() {
	if c.Density.BucketCount <= 0 {
		c.Density.BucketCount = defaultDensityBucketCount
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
