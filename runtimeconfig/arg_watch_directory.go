package runtimeconfig

import (
	"fmt"
	"path/filepath"
)

type argWatchDirectory struct {
	value *[]string
}

// name implements argDef.
func (a argWatchDirectory) name() string {
	return "watchdir"
}

// stringFunc implements argDef.
//
// The path is resolved but deliberately not required to exist: missing
// directories are skipped with a warning at registration time.
func (a argWatchDirectory) stringFunc() func(string) error {
	return func(s string) error {
		if abs, err := filepath.Abs(s); err != nil {
			return fmt.Errorf("obtaining absolute path from %s: %s", s, err)
		} else {
			*a.value = append(*a.value, abs)
			return nil
		}
	}
}

// usage implements argDef.
func (a argWatchDirectory) usage() string {
	return `A directory to watch for file changes and removals.

May be specified multiple times.`
}
