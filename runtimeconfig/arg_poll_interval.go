package runtimeconfig

import (
	"fmt"
	"time"
)

type argPollInterval struct {
	value *time.Duration
}

// name implements argDef.
func (a argPollInterval) name() string {
	return "pollinterval"
}

// stringFunc implements argDef.
func (a argPollInterval) stringFunc() func(string) error {
	return func(s string) error {
		if d, err := time.ParseDuration(s); err != nil {
			return fmt.Errorf("parsing poll interval %s: %w", s, err)
		} else if d <= 0 {
			return fmt.Errorf("poll interval must be positive: %s", s)
		} else {
			*a.value = d
			return nil
		}
	}
}

// usage implements argDef.
func (a argPollInterval) usage() string {
	return `The interval between reads of pending filesystem events.

The default is 100ms.`
}
