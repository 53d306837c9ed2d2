package config

import (
	"time"

	"github.com/dshills/reel/internal/logging"
)

// Config is the complete reel configuration.
type Config struct {
	Log    logging.Config `toml:"log" yaml:"log"`
	Input  InputConfig    `toml:"input" yaml:"input"`
	Replay ReplayConfig   `toml:"replay" yaml:"replay"`
	Store  StoreConfig    `toml:"store" yaml:"store"`
}

// InputConfig configures the binding router.
type InputConfig struct {
	// Mode is the simultaneous binding mode: unique, all or single.
	Mode string `toml:"mode" yaml:"mode"`

	// Actions is the action domain. Empty accepts any action.
	Actions []string `toml:"actions" yaml:"actions"`

	// Bindings maps raw keys to actions.
	Bindings []BindingConfig `toml:"bindings" yaml:"bindings"`
}

// BindingConfig is one key-to-action entry.
type BindingConfig struct {
	Key    string `toml:"key" yaml:"key"`
	Action string `toml:"action" yaml:"action"`
}

// ReplayConfig configures recording and playback.
type ReplayConfig struct {
	// Lag is subtracted from the host time when polling a recording.
	Lag Duration `toml:"lag" yaml:"lag"`

	// Step is the fixed update interval of the host loop.
	Step Duration `toml:"step" yaml:"step"`

	// Neutral is the pointer position reported before the first frame.
	Neutral PointConfig `toml:"neutral" yaml:"neutral"`
}

// PointConfig is a 2D position.
type PointConfig struct {
	X float64 `toml:"x" yaml:"x"`
	Y float64 `toml:"y" yaml:"y"`
}

// StoreConfig configures persistence.
type StoreConfig struct {
	// Path is the SQLite database file. Empty disables the database.
	Path string `toml:"path" yaml:"path"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: logging.DefaultConfig(),
		Input: InputConfig{
			Mode:    "unique",
			Actions: []string{"primary", "secondary", "tertiary"},
			Bindings: []BindingConfig{
				{Key: "MouseLeft", Action: "primary"},
				{Key: "MouseRight", Action: "secondary"},
				{Key: "MouseMiddle", Action: "tertiary"},
				{Key: "Space", Action: "primary"},
			},
		},
		Replay: ReplayConfig{
			Step: Duration(16 * time.Millisecond),
		},
	}
}
