package gps

import (
	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config holds all configuration options for the replay engine
type Config struct {
	ChunkSize       int            `env:"GPS_REPLAY_CHUNK_SIZE"`       // bytes per bounded file read
	RequireChecksum bool           `env:"GPS_REPLAY_REQUIRE_CHECKSUM"` // drop sentences without a *hh suffix
	Logger          zerolog.Logger `env:"-"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		ChunkSize:       16 * 1024,
		RequireChecksum: false,
		Logger:          zerolog.Nop(),
	}
}

// ConfigFromEnv returns the default configuration with any GPS_REPLAY_*
// environment overrides applied.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid and returns an error if not
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}
	return nil
}
