package hookrunner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/jakewan/go-dirwatcher/logger"
	"github.com/jakewan/go-dirwatcher/runtimeconfig"
)

type Dependencies interface {
	Logger() logger.Logger
}

const hookTimeout = 10 * time.Second

// StartEventProcessing consumes file events until the channel is closed,
// filters them through the configured include and exclude expressions,
// and runs the hook command for each surviving event. Hook invocations
// are serial; a slow hook delays later events rather than overlapping
// them.
func StartEventProcessing(
	deps Dependencies,
	cfg runtimeconfig.Config,
	events <-chan FileEvent,
	done chan<- bool,
) {
	defer func() {
		done <- true
	}()
	l := deps.Logger()
	for ev := range events {
		l.Errorf(logger.DEBUG, "Event: %s %s", ev.Kind, ev.Path)
		if !shouldReport(cfg.IncludeFileRegexes(), cfg.ExcludeFileRegexes(), ev.Path) {
			l.Errorf(logger.DEBUG, "File is excluded: %s", ev.Path)
			continue
		}
		l.Errorf(logger.INFO, "%s: %s", ev.Kind, ev.Path)
		if cfg.HookCommand() == "" {
			continue
		}
		if err := runHookCommand(cfg.HookCommand(), ev); err != nil {
			l.Errorf(logger.ERROR, "Error running hook command: %s", err)
		}
	}
}

// shouldReport applies the include expressions (an empty include list
// matches everything) and then the exclude expressions.
func shouldReport(
	includeFileRegexes []regexp.Regexp,
	excludeFileRegexes []regexp.Regexp,
	path string,
) bool {
	if len(includeFileRegexes) > 0 {
		if slices.IndexFunc(includeFileRegexes, func(r regexp.Regexp) bool {
			return r.MatchString(path)
		}) < 0 {
			return false
		}
	}
	return slices.IndexFunc(excludeFileRegexes, func(r regexp.Regexp) bool {
		return r.MatchString(path)
	}) < 0
}

func runHookCommand(c string, ev FileEvent) error {
	commandParts := strings.Split(c, " ")
	name := commandParts[0]
	args := commandParts[1:]
	for i, a := range args {
		args[i] = os.ExpandEnv(a)
	}
	ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
	defer cancel()
	proc := exec.CommandContext(ctx, name, args...)
	proc.Env = append(
		os.Environ(),
		fmt.Sprintf("DIRWATCHER_PATH=%s", ev.Path),
		fmt.Sprintf("DIRWATCHER_EVENT=%s", ev.Kind),
	)
	proc.Stdout = os.Stdout
	proc.Stderr = os.Stderr
	if err := proc.Start(); err != nil {
		return fmt.Errorf("starting hook command: %w", err)
	}
	if err := proc.Wait(); err != nil {
		return fmt.Errorf("waiting for hook command to complete: %w", err)
	}
	return nil
}
