// Package config loads optional YAML overrides for loop, performance and
// cache tuning. Absent file yields the package defaults; present values are
// merged over defaults and validated as a whole.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/frameloop/engine"
	"github.com/lixenwraith/frameloop/parameter"
	"github.com/lixenwraith/frameloop/render"
)

// Config is the full tuning file
type Config struct {
	Loop        Loop        `yaml:"loop"`
	Performance Performance `yaml:"performance"`
	Cache       Cache       `yaml:"cache"`
	Host        Host        `yaml:"host"`
}

// Loop tunes the scheduler
type Loop struct {
	GracePeriodMs int `yaml:"grace_period_ms"`
	DeltaClampMs  int `yaml:"delta_clamp_ms"`
}

// Performance tunes FPS sampling and hysteresis
type Performance struct {
	LowFPSThreshold  int `yaml:"low_fps_threshold"`
	HighFPSThreshold int `yaml:"high_fps_threshold"`
	DegradeSustainMs int `yaml:"degrade_sustain_ms"`
	SampleIntervalMs int `yaml:"sample_interval_ms"`
}

// Cache tunes the render resource cache
type Cache struct {
	Enabled           bool `yaml:"enabled"`
	MaxEntries        int  `yaml:"max_entries"`
	CleanupIntervalMs int  `yaml:"cleanup_interval_ms"`
	MaxEntryAgeMs     int  `yaml:"max_entry_age_ms"`
	StatsIntervalMs   int  `yaml:"stats_interval_ms"`
}

// Host tunes the reference host
type Host struct {
	TargetFPS int `yaml:"target_fps"`
}

// Default returns the built-in tuning
func Default() Config {
	return Config{
		Loop: Loop{
			GracePeriodMs: int(parameter.GracePeriodDuration / time.Millisecond),
			DeltaClampMs:  int(parameter.MaxFrameDelta / time.Millisecond),
		},
		Performance: Performance{
			LowFPSThreshold:  parameter.LowFPSThreshold,
			HighFPSThreshold: parameter.HighFPSThreshold,
			DegradeSustainMs: int(parameter.DegradeSustain / time.Millisecond),
			SampleIntervalMs: int(parameter.FPSSampleInterval / time.Millisecond),
		},
		Cache: Cache{
			Enabled:           true,
			MaxEntries:        parameter.DefaultMaxCacheEntries,
			CleanupIntervalMs: int(parameter.CacheCleanupInterval / time.Millisecond),
			MaxEntryAgeMs:     int(parameter.CacheMaxEntryAge / time.Millisecond),
			StatsIntervalMs:   int(parameter.CacheStatsInterval / time.Millisecond),
		},
		Host: Host{
			TargetFPS: int(time.Second / parameter.DefaultFrameInterval),
		},
	}
}

// Load reads the file at path over the defaults
// Empty path returns the defaults unchanged
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects out-of-range tuning with field-naming errors
func (c Config) Validate() error {
	if c.Loop.GracePeriodMs < 0 {
		return fmt.Errorf("loop.grace_period_ms must be non-negative, got %d", c.Loop.GracePeriodMs)
	}
	if c.Loop.DeltaClampMs <= 0 {
		return fmt.Errorf("loop.delta_clamp_ms must be positive, got %d", c.Loop.DeltaClampMs)
	}
	if c.Performance.LowFPSThreshold <= 0 {
		return fmt.Errorf("performance.low_fps_threshold must be positive, got %d", c.Performance.LowFPSThreshold)
	}
	if c.Performance.HighFPSThreshold <= c.Performance.LowFPSThreshold {
		return fmt.Errorf("performance.high_fps_threshold (%d) must exceed low_fps_threshold (%d)",
			c.Performance.HighFPSThreshold, c.Performance.LowFPSThreshold)
	}
	if c.Performance.DegradeSustainMs <= 0 {
		return fmt.Errorf("performance.degrade_sustain_ms must be positive, got %d", c.Performance.DegradeSustainMs)
	}
	if c.Performance.SampleIntervalMs <= 0 {
		return fmt.Errorf("performance.sample_interval_ms must be positive, got %d", c.Performance.SampleIntervalMs)
	}
	if c.Cache.Enabled {
		if c.Cache.MaxEntries <= 0 {
			return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
		}
		if c.Cache.CleanupIntervalMs <= 0 {
			return fmt.Errorf("cache.cleanup_interval_ms must be positive, got %d", c.Cache.CleanupIntervalMs)
		}
		if c.Cache.MaxEntryAgeMs <= 0 {
			return fmt.Errorf("cache.max_entry_age_ms must be positive, got %d", c.Cache.MaxEntryAgeMs)
		}
		if c.Cache.StatsIntervalMs <= 0 {
			return fmt.Errorf("cache.stats_interval_ms must be positive, got %d", c.Cache.StatsIntervalMs)
		}
	}
	if c.Host.TargetFPS <= 0 || c.Host.TargetFPS > 240 {
		return fmt.Errorf("host.target_fps must be in 1..240, got %d", c.Host.TargetFPS)
	}
	return nil
}

// EngineConfig maps the tuning into scheduler configuration
// Logger and status registry are wired by the caller
func (c Config) EngineConfig() engine.Config {
	return engine.Config{
		GracePeriod: time.Duration(c.Loop.GracePeriodMs) * time.Millisecond,
		DeltaClamp:  time.Duration(c.Loop.DeltaClampMs) * time.Millisecond,
		Perf: engine.PerfConfig{
			LowFPSThreshold:  c.Performance.LowFPSThreshold,
			HighFPSThreshold: c.Performance.HighFPSThreshold,
			DegradeSustain:   time.Duration(c.Performance.DegradeSustainMs) * time.Millisecond,
			SampleInterval:   time.Duration(c.Performance.SampleIntervalMs) * time.Millisecond,
		},
	}
}

// CacheConfig maps the tuning into render cache configuration
func (c Config) CacheConfig() render.CacheConfig {
	return render.CacheConfig{
		MaxEntries:      c.Cache.MaxEntries,
		CleanupInterval: time.Duration(c.Cache.CleanupIntervalMs) * time.Millisecond,
		MaxEntryAge:     time.Duration(c.Cache.MaxEntryAgeMs) * time.Millisecond,
		StatsInterval:   time.Duration(c.Cache.StatsIntervalMs) * time.Millisecond,
		Enabled:         c.Cache.Enabled,
	}
}

// FrameInterval returns the host frame pacing for the configured target FPS
func (c Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Host.TargetFPS)
}
