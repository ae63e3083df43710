package config

import "fmt"

// ConfigError reports a missing or out-of-range parameter. It carries the
// section, option, and offending value so the operator can correct the
// file and re-run.
type ConfigError struct {
	Section string
	Option  string
	Value   interface{}
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config [%s] %s = %v: %s", e.Section, e.Option, e.Value, e.Reason)
}

func badOption(section, option string, value interface{}, reason string) error {
	return &ConfigError{Section: section, Option: option, Value: value, Reason: reason}
}
