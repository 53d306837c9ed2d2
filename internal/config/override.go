package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/dshills/reel/internal/logging"
)

// EnvPrefix is the prefix of environment overrides, e.g. REEL_LOG_LEVEL.
const EnvPrefix = "REEL"

// Setting keys understood by Override.
const (
	KeyLogLevel   = "log.level"
	KeyLogFormat  = "log.format"
	KeyInputMode  = "input.mode"
	KeyReplayLag  = "replay.lag"
	KeyReplayStep = "replay.step"
	KeyStorePath  = "store.path"
)

// NewViper returns a viper instance reading REEL_* environment variables
// for the override keys.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range []string{KeyLogLevel, KeyLogFormat, KeyInputMode, KeyReplayLag, KeyReplayStep, KeyStorePath} {
		_ = v.BindEnv(k)
	}
	return v
}

// Override applies every override key set in v.
// Durations accept time.Duration notation.
func (c *Config) Override(v *viper.Viper) error {
	if v == nil {
		return nil
	}
	if v.IsSet(KeyLogLevel) {
		c.Log.Level = v.GetString(KeyLogLevel)
	}
	if v.IsSet(KeyLogFormat) {
		c.Log.Format = logging.Format(v.GetString(KeyLogFormat))
	}
	if v.IsSet(KeyInputMode) {
		c.Input.Mode = v.GetString(KeyInputMode)
	}
	if v.IsSet(KeyReplayLag) {
		if err := c.Replay.Lag.UnmarshalText([]byte(v.GetString(KeyReplayLag))); err != nil {
			return &ValidationError{Path: KeyReplayLag, Message: err.Error(), Value: v.GetString(KeyReplayLag)}
		}
	}
	if v.IsSet(KeyReplayStep) {
		if err := c.Replay.Step.UnmarshalText([]byte(v.GetString(KeyReplayStep))); err != nil {
			return &ValidationError{Path: KeyReplayStep, Message: err.Error(), Value: v.GetString(KeyReplayStep)}
		}
	}
	if v.IsSet(KeyStorePath) {
		c.Store.Path = v.GetString(KeyStorePath)
	}
	return nil
}
