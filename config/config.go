// Package config loads the bus configuration from a TOML file.
//
//	backend = "spidev"
//	bus = 0
//	device = 0
//	speed_hz = 1000000
//	mode = 0
//	bits_per_word = 8
//
//	[ch347]
//	chip_select = 0
//	clock = 6
//
//	[log]
//	level = "info"
package config

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const (
	BackendSpidev = "spidev"
	BackendCH347  = "ch347"
)

type Config struct {
	Backend     string      `toml:"backend"`
	Bus         int         `toml:"bus"`
	Device      int         `toml:"device"`
	SpeedHz     int64       `toml:"speed_hz"`
	Mode        int         `toml:"mode"`
	BitsPerWord int         `toml:"bits_per_word"`
	CH347       CH347Config `toml:"ch347"`
	Log         LogConfig   `toml:"log"`
}

type CH347Config struct {
	Path       string `toml:"path"` // hidraw path, found by VID/PID when empty
	ChipSelect int    `toml:"chip_select"`
	Clock      int    `toml:"clock"` // SPIClock0 (60 MHz) .. SPIClock7 (468.75 KHz)
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the settings of the HiFiBerry DSP boards: /dev/spidev0.0,
// 1 MHz, mode 0, 8 bits per word.
func Default() Config {
	return Config{
		Backend:     BackendSpidev,
		SpeedHz:     1000000,
		BitsPerWord: 8,
		CH347:       CH347Config{Clock: 6},
		Log:         LogConfig{Level: "info"},
	}
}

// Load reads path on top of Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config parse failed (%s)", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, errors.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSpidev:
		if c.Bus < 0 || c.Device < 0 {
			return errors.Errorf("invalid spidev %d.%d", c.Bus, c.Device)
		}
		if c.SpeedHz <= 0 {
			return errors.Errorf("speed_hz must be positive, got %d", c.SpeedHz)
		}
		if c.Mode < 0 || c.Mode > 3 {
			return errors.Errorf("mode must be 0-3, got %d", c.Mode)
		}
	case BackendCH347:
		if c.CH347.ChipSelect != 0 && c.CH347.ChipSelect != 1 {
			return errors.Errorf("ch347.chip_select must be 0 or 1, got %d", c.CH347.ChipSelect)
		}
		if c.CH347.Clock < 0 || c.CH347.Clock > 7 {
			return errors.Errorf("ch347.clock must be 0-7, got %d", c.CH347.Clock)
		}
		if c.Mode < 0 || c.Mode > 3 {
			return errors.Errorf("mode must be 0-3, got %d", c.Mode)
		}
	default:
		return errors.Errorf("unknown backend %q", c.Backend)
	}

	if c.BitsPerWord != 8 {
		return errors.Errorf("bits_per_word must be 8, got %d", c.BitsPerWord)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}
