// Package config loads host configuration from TOML.
package config

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/arrayio/capability"
	"github.com/wippyai/arrayio/errors"
)

// Config selects which host capabilities a run may use.
type Config struct {
	Display     Display `toml:"display"`
	Log         Log     `toml:"log"`
	Random      Random  `toml:"random"`
	Audio       Toggle  `toml:"audio"`
	Filesystem  Toggle  `toml:"filesystem"`
	Input       Toggle  `toml:"input"`
	Environment Toggle  `toml:"environment"`
}

// Toggle enables or disables one capability.
type Toggle struct {
	Enabled bool `toml:"enabled"`
}

// Display configures terminal image output. Zero width or height uses the
// terminal size.
type Display struct {
	Enabled bool `toml:"enabled"`
	Width   int  `toml:"width"`
	Height  int  `toml:"height"`
}

// Log configures the logger.
type Log struct {
	Level string `toml:"level"`
}

// Random seeds rand. Zero seeds from the clock.
type Random struct {
	Seed int64 `toml:"seed"`
}

// Default enables every capability except audio.
func Default() *Config {
	return &Config{
		Display:     Display{Enabled: true},
		Audio:       Toggle{Enabled: false},
		Filesystem:  Toggle{Enabled: true},
		Input:       Toggle{Enabled: true},
		Environment: Toggle{Enabled: true},
		Log:         Log{Level: "info"},
	}
}

// Load reads a TOML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.PhaseConfig, errors.KindIO).
			Value(path).
			Cause(err).
			Detail("cannot read %s", path).
			Build()
	}
	c, err := Parse(string(data))
	if err != nil {
		if e, ok := err.(*errors.Error); ok && e.Value == nil {
			e.Value = path
		}
		return nil, err
	}
	return c, nil
}

// Parse decodes TOML over the defaults. Unknown keys are rejected.
func Parse(data string) (*Config, error) {
	c := Default()
	md, err := toml.Decode(data, c)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "parse error")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("unknown keys: %s", strings.Join(keys, ", ")).
			Build()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Display.Width < 0 || c.Display.Height < 0 {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value([2]int{c.Display.Width, c.Display.Height}).
			Detail("display size must not be negative, got %dx%d", c.Display.Width, c.Display.Height).
			Build()
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses the log level.
func (c *Config) Level() (zapcore.Level, error) {
	if c.Log.Level == "" {
		return zapcore.InfoLevel, nil
	}
	l, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return zapcore.InfoLevel, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "invalid log level")
	}
	return l, nil
}

// Capabilities returns the set of enabled optional capabilities.
func (c *Config) Capabilities() capability.Set {
	var s capability.Set
	if c.Display.Enabled {
		s |= capability.CapDisplay
	}
	if c.Audio.Enabled {
		s |= capability.CapAudio
	}
	if c.Input.Enabled {
		s |= capability.CapInput
	}
	if c.Environment.Enabled {
		s |= capability.CapEnvironment
	}
	if c.Filesystem.Enabled {
		s |= capability.CapFilesystem
	}
	return s
}
