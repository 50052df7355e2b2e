package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avast/retry-go"
	"github.com/hashicorp/go-multierror"
	"github.com/jakewan/go-dirwatcher/hookrunner"
	"github.com/jakewan/go-dirwatcher/logger"
	"github.com/jakewan/go-dirwatcher/runtimeconfig"
	"github.com/jakewan/go-dirwatcher/watchengine"
)

func main() {
	l := logger.NewLogger("go-dirwatcher", os.Stderr)
	if cfg, err := runtimeconfig.Build(os.Args[1:]); err != nil {
		l.Errorf(logger.ERROR, err.Error())
		os.Exit(1)
	} else {
		l.SetErrorLevel(cfg.LogLevel())
		if cfg.WorkingDirectory() != "" {
			if err := os.Chdir(cfg.WorkingDirectory()); err != nil {
				l.Errorf(logger.ERROR, err.Error())
				os.Exit(1)
			}
		}
		l.Errorf(logger.DEBUG, "%s", cfg)
		startBackgroundProcesses(l, cfg)
	}
}

func startBackgroundProcesses(l logger.Logger, cfg runtimeconfig.Config) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	trapSignalsDone := make(chan bool, 1)

	fileEventChan := make(chan hookrunner.FileEvent)

	hookRunnerDone := make(chan bool)
	go hookrunner.StartEventProcessing(
		newHookRunnerDeps(l),
		cfg,
		fileEventChan,
		hookRunnerDone,
	)

	l.Errorf(logger.DEBUG, "Starting to watch directories")
	engineQuit := make(chan bool)
	engineDone := make(chan bool)
	go runEngine(l, cfg, fileEventChan, engineQuit, engineDone)

	go startTrapSignals(sigChan, trapSignalsDone)

	l.Errorf(logger.DEBUG, "Waiting for quit signal")
	select {
	case <-trapSignalsDone:
		l.Errorf(logger.DEBUG, "Quit signal received")
		close(engineQuit)
		<-engineDone
	case <-engineDone:
		l.Errorf(logger.DEBUG, "Watch engine stopped on its own")
	}
	l.Errorf(logger.DEBUG, "Watch engine completed")

	// Signal the hook runner to quit by closing the file event channel
	// and wait for it to signal completion.
	close(fileEventChan)
	<-hookRunnerDone
	l.Errorf(logger.DEBUG, "Hook runner done")
}

func startTrapSignals(sigChan <-chan os.Signal, done chan<- bool) {
	defer func() {
		done <- true
	}()
	<-sigChan
}

// runEngine owns every engine call. Registration, deregistration and
// polling all happen on this goroutine; the engine provides no internal
// locking.
func runEngine(
	l logger.Logger,
	cfg runtimeconfig.Config,
	events chan<- hookrunner.FileEvent,
	quit <-chan bool,
	done chan<- bool,
) {
	defer func() {
		done <- true
	}()
	sched := &tickerScheduler{interval: cfg.PollInterval()}
	engine, err := watchengine.New(
		newEngineDeps(l),
		&channelSubscriber{events: events},
		sched,
		cfg.WatchDirectories(),
	)
	if err != nil {
		l.Errorf(logger.ERROR, "Error creating watch engine: %s", err)
		return
	}
	defer func() {
		var result *multierror.Error
		if !engine.StopWatching() {
			result = multierror.Append(result, errors.New("stopping watches failed"))
		}
		if err := engine.Close(); err != nil {
			result = multierror.Append(result, err)
		}
		if err := result.ErrorOrNil(); err != nil {
			l.Errorf(logger.ERROR, "Error shutting down watch engine: %s", err)
		}
	}()

	if err := retry.Do(
		func() error {
			if !engine.StartWatching() {
				return errors.New("directory registration failed")
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.DelayType(retry.FixedDelay),
	); err != nil {
		l.Errorf(logger.ERROR, "Error starting watches: %s", err)
		return
	}
	l.Errorf(logger.DEBUG, "Watching %v", engine.Directories())

	for {
		select {
		case <-quit:
			return
		case <-sched.C():
			if err := engine.Poll(); err != nil {
				l.Errorf(logger.ERROR, "Fatal error reading filesystem events: %s", err)
				return
			}
		}
	}
}

// tickerScheduler drives the engine's polling. Arm and Disarm are only
// called from the engine goroutine, so no locking is needed. C returns
// nil while disarmed, which parks the polling select arm.
type tickerScheduler struct {
	interval time.Duration
	ticker   *time.Ticker
}

// Arm implements watchengine.PollScheduler.
func (s *tickerScheduler) Arm() {
	if s.ticker == nil {
		s.ticker = time.NewTicker(s.interval)
	}
}

// Disarm implements watchengine.PollScheduler.
func (s *tickerScheduler) Disarm() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}

func (s *tickerScheduler) C() <-chan time.Time {
	if s.ticker == nil {
		return nil
	}
	return s.ticker.C
}

// channelSubscriber bridges engine emissions into the hook runner's
// event channel.
type channelSubscriber struct {
	events chan<- hookrunner.FileEvent
}

// OnFileChanged implements watchengine.Subscriber.
func (s *channelSubscriber) OnFileChanged(path string) {
	s.events <- hookrunner.FileEvent{Path: path, Kind: hookrunner.CHANGED}
}

// OnFileRemoved implements watchengine.Subscriber.
func (s *channelSubscriber) OnFileRemoved(path string) {
	s.events <- hookrunner.FileEvent{Path: path, Kind: hookrunner.REMOVED}
}

type engineDeps struct {
	logger logger.Logger
}

// Logger implements watchengine.Dependencies.
func (d *engineDeps) Logger() logger.Logger {
	return d.logger
}

func newEngineDeps(l logger.Logger) watchengine.Dependencies {
	return &engineDeps{logger: l}
}

type hookRunnerDeps struct {
	logger logger.Logger
}

// Logger implements hookrunner.Dependencies.
func (h *hookRunnerDeps) Logger() logger.Logger {
	return h.logger
}

func newHookRunnerDeps(l logger.Logger) hookrunner.Dependencies {
	return &hookRunnerDeps{logger: l}
}
