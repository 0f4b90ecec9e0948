// Package procwatch answers whether the Riot Client or the game is running,
// and can kill or launch the client. The switch engine never consults this
// package directly; the command layer checks it before a switch because an
// alias swap under a process with open handles is unsafe.
package procwatch

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/valo-accounts/internal/valo/paths"
)

const (
	clientProcessName = "RiotClientServices.exe"
	gameProcessName   = "VALORANT-Win64-Shipping.exe"

	// DefaultPollInterval is how often the background watcher re-checks
	// the process list.
	DefaultPollInterval = 2 * time.Second
)

// ErrClientNotFound indicates no client executable exists at the configured
// path or any known install location.
var ErrClientNotFound = errors.New("Riot Client executable not found")

// Status is a snapshot of the watched processes.
type Status struct {
	ClientRunning bool
	GameRunning   bool
}

// Watcher checks and optionally polls process status.
type Watcher struct {
	interval time.Duration
	logger   zerolog.Logger

	// running is swapped out in tests.
	running func(processName string) bool
}

// New creates a Watcher with the default poll interval.
func New(logger zerolog.Logger) *Watcher {
	return &Watcher{
		interval: DefaultPollInterval,
		logger:   logger,
		running:  processRunning,
	}
}

// ClientRunning reports whether the Riot Client is currently running.
func (w *Watcher) ClientRunning() bool {
	return w.running(clientProcessName)
}

// GameRunning reports whether the game itself is currently running.
func (w *Watcher) GameRunning() bool {
	return w.running(gameProcessName)
}

// Snapshot checks both processes once.
func (w *Watcher) Snapshot() Status {
	return Status{
		ClientRunning: w.ClientRunning(),
		GameRunning:   w.GameRunning(),
	}
}

// Watch polls the process list until ctx is done, sending a Status on the
// returned channel for the initial state and then on every transition. The
// channel is closed when polling stops.
func (w *Watcher) Watch(ctx context.Context) <-chan Status {
	updates := make(chan Status, 1)

	go func() {
		defer close(updates)

		last := w.Snapshot()
		updates <- last

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				current := w.Snapshot()
				if current == last {
					continue
				}
				w.logger.Debug().
					Bool("client", current.ClientRunning).
					Bool("game", current.GameRunning).
					Msg("process status changed")
				last = current
				select {
				case updates <- current:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return updates
}

// KillClient force-terminates the Riot Client.
func (w *Watcher) KillClient() error {
	return killProcess(clientProcessName)
}

// LaunchClient starts the Riot Client, preferring the configured service
// path and falling back to known install locations.
func (w *Watcher) LaunchClient(configuredPath string) error {
	var candidates []string
	if configuredPath != "" {
		candidates = append(candidates, configuredPath)
	}
	candidates = append(candidates, paths.ClientServiceCandidates()...)

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		w.logger.Info().Str("path", candidate).Msg("launching Riot Client")
		return launchDetached(candidate)
	}
	return ErrClientNotFound
}
