package config

import (
	"fmt"

	"github.com/dshills/reel/internal/input/action"
	"github.com/dshills/reel/internal/input/binding"
	"github.com/dshills/reel/internal/input/key"
	"github.com/dshills/reel/internal/logging"
)

// Validate checks the configuration and returns ValidationErrors listing
// every problem, or nil.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(path, msg string, value any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value})
	}

	switch c.Log.Format {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		add("log.format", "must be text or json", c.Log.Format)
	}

	if _, err := binding.ParseMode(c.Input.Mode); err != nil {
		add("input.mode", "must be unique, all or single", c.Input.Mode)
	}
	domain, err := c.Domain()
	if err != nil {
		add("input.actions", err.Error(), c.Input.Actions)
	}

	seen := make(map[key.Key]int)
	for i, b := range c.Input.Bindings {
		path := fmt.Sprintf("input.bindings[%d]", i)
		k, err := key.Parse(b.Key)
		if err != nil {
			add(path+".key", err.Error(), b.Key)
			continue
		}
		if b.Action == "" {
			add(path+".action", "must not be empty", b.Action)
		} else if err := domain.Validate(action.Action(b.Action)); err != nil {
			add(path+".action", "not in input.actions", b.Action)
		}
		if prev, ok := seen[k]; ok {
			add(path+".key", fmt.Sprintf("already bound by input.bindings[%d]", prev), b.Key)
		}
		seen[k] = i
	}

	if c.Replay.Lag < 0 {
		add("replay.lag", "must not be negative", c.Replay.Lag)
	}
	if c.Replay.Step <= 0 {
		add("replay.step", "must be positive", c.Replay.Step)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Mode returns the configured binding mode.
func (c *Config) Mode() (binding.Mode, error) {
	return binding.ParseMode(c.Input.Mode)
}

// Domain returns the configured action domain. No actions yields an open
// domain.
func (c *Config) Domain() (action.Domain, error) {
	actions := make([]action.Action, len(c.Input.Actions))
	for i, a := range c.Input.Actions {
		actions[i] = action.Action(a)
	}
	return action.NewDomain(actions...)
}

// BindingTable builds the immutable binding table.
func (c *Config) BindingTable() (*binding.Table, error) {
	domain, err := c.Domain()
	if err != nil {
		return nil, err
	}

	bindings := make([]binding.Binding, 0, len(c.Input.Bindings))
	for _, b := range c.Input.Bindings {
		parsed, err := binding.ParseBinding(b.Key, b.Action)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, parsed)
	}
	return binding.NewTable(domain, bindings...)
}
