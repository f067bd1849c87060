package config

import (
	"github.com/charmbracelet/log"

	"github.com/lifetree/lifetree/pkg/errors"
)

// ParseLevel parses a log level name. The empty string means info.
func ParseLevel(s string) (log.Level, error) {
	if s == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel, errors.New(errors.ErrCodeInvalidConfig, "log.level: unknown level %q", s)
	}
	return lvl, nil
}
