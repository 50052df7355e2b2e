package runtimeconfig

import (
	"fmt"
	"regexp"
	"syscall"
	"time"

	"github.com/jakewan/go-dirwatcher/logger"
)

type Config interface {
	fmt.Stringer
	WatchDirectories() []string
	IncludeFileRegexes() []regexp.Regexp
	ExcludeFileRegexes() []regexp.Regexp
	LogLevel() logger.LogLevel
	PollInterval() time.Duration
	HookCommand() string
	QuitSignal() syscall.Signal
	WorkingDirectory() string
}

type config struct {
	logLevel           logger.LogLevel
	workingDirectory   string
	watchDirectories   []string
	includeFileRegexes []regexp.Regexp
	excludeFileRegexes []regexp.Regexp
	pollInterval       time.Duration
	hookCommand        string
	quitSignal         syscall.Signal
}

// WatchDirectories implements Config.
func (c *config) WatchDirectories() []string {
	return c.watchDirectories
}

// ExcludeFileRegexes implements Config.
func (c *config) ExcludeFileRegexes() []regexp.Regexp {
	return c.excludeFileRegexes
}

// IncludeFileRegexes implements Config.
func (c *config) IncludeFileRegexes() []regexp.Regexp {
	return c.includeFileRegexes
}

// LogLevel implements Config.
func (c *config) LogLevel() logger.LogLevel {
	return c.logLevel
}

// PollInterval implements Config.
func (c *config) PollInterval() time.Duration {
	return c.pollInterval
}

// HookCommand implements Config.
func (c *config) HookCommand() string {
	return c.hookCommand
}

// QuitSignal implements Config.
func (c *config) QuitSignal() syscall.Signal {
	return c.quitSignal
}

// WorkingDirectory implements Config.
func (c *config) WorkingDirectory() string {
	return c.workingDirectory
}

// String implements Config.
func (c *config) String() string {
	watchDirectories := make([]string, 0, len(c.watchDirectories))
	for _, s := range c.watchDirectories {
		watchDirectories = append(watchDirectories, fmt.Sprintf("'%s'", s))
	}
	includeFileRegexes := make([]string, 0, len(c.includeFileRegexes))
	for _, r := range c.includeFileRegexes {
		includeFileRegexes = append(
			includeFileRegexes,
			fmt.Sprintf("'%s'", r.String()),
		)
	}
	excludeFileRegexes := make([]string, 0, len(c.excludeFileRegexes))
	for _, r := range c.excludeFileRegexes {
		excludeFileRegexes = append(
			excludeFileRegexes,
			fmt.Sprintf("'%s'", r.String()),
		)
	}
	return fmt.Sprintf(`Config:
  Working directory: %s
  Log level: %s
  Watch directories: %s
  Poll interval: %s
  Hook command: %s
  Include file regexes: %s
  Exclude file regexes: %s`,
		c.workingDirectory,
		c.logLevel,
		watchDirectories,
		c.pollInterval,
		c.hookCommand,
		includeFileRegexes,
		excludeFileRegexes,
	)
}
