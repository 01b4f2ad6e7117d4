// Package config handles application configuration and setup
package config

import (
	"github.com/retroenv/ndsrom/internal/options"
	"github.com/retroenv/ndsrom/internal/progress"
	"github.com/retroenv/ndsrom/internal/rules"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// CreateObserver returns the decode progress observer for the options.
// Decode events are only reported in debug mode.
func CreateObserver(logger *log.Logger, opts options.Program) progress.Observer {
	if !opts.Debug {
		return progress.Nop{}
	}
	return progress.NewLogObserver(logger)
}

// LoadRules loads the rules file of the options or returns the default
// rules if no file is configured.
func LoadRules(opts options.Program) (rules.Rules, error) {
	if opts.Config == "" {
		return rules.Default(), nil
	}
	return rules.Load(opts.Config)
}
