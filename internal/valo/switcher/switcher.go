// Package switcher converts the Riot Client's live data directory into a
// junction-redirected multi-account layout and atomically retargets the
// redirection, never deleting user data in the process.
package switcher

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/example/valo-accounts/internal/valo/junction"
	"github.com/example/valo-accounts/internal/valo/layout"
	"github.com/example/valo-accounts/internal/valo/transfer"
)

// Config carries the resolved path configuration for one engine invocation.
// Passed explicitly so the engine has no hidden global state and tests can
// point it at temporary directories.
type Config struct {
	// LiveDataPath is the fixed directory the Riot Client reads at runtime.
	LiveDataPath string
	// AccountDataRoot is the root under which every account folder and the
	// sentinel folder live.
	AccountDataRoot string
}

// AccountResolver supplies the stored, immutable folder name for an account.
type AccountResolver interface {
	AccountFolder(accountID int64) (string, error)
}

// Pointer persists the active-account pointer. It is written only after the
// new redirection is installed, so it always reflects an installed
// redirection, never a promise of one.
type Pointer interface {
	SetActiveAccount(accountID *int64) error
}

// State classifies the live path at switch time. It is computed fresh on
// every invocation and never persisted.
type State int

const (
	StateAbsent State = iota
	StateJunction
	StateRealDirectory
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateJunction:
		return "junction"
	case StateRealDirectory:
		return "real directory"
	default:
		return "unknown"
	}
}

// Status describes the live path for drift reporting. Target is empty when
// the live path is not a junction or its metadata cannot be resolved.
type Status struct {
	State  State
	Target string
}

// Engine orchestrates account switches. Invocations are serialized with an
// internal mutex: two reconciliations racing on the same live entry can
// interleave unsafely.
type Engine struct {
	mu        sync.Mutex
	fs        afero.Fs
	junctions junction.Manager
	mover     *transfer.Mover
	accounts  AccountResolver
	pointer   Pointer
	logger    zerolog.Logger
}

// New constructs an Engine from its collaborators.
func New(fsys afero.Fs, junctions junction.Manager, mover *transfer.Mover, accounts AccountResolver, pointer Pointer, logger zerolog.Logger) *Engine {
	return &Engine{
		fs:        fsys,
		junctions: junctions,
		mover:     mover,
		accounts:  accounts,
		pointer:   pointer,
		logger:    logger,
	}
}

// Switch redirects the live data path at the account's stored folder, or at
// the sentinel folder when accountID is nil, and persists the active-account
// pointer as its final step.
//
// Callers must check that the Riot Client and the game are not running before
// invoking Switch; swapping an alias underneath a process with open handles
// into the old target can corrupt in-flight writes.
//
// On failure the system is left either unchanged or with the live path
// absent; it never points at the wrong target, and the persisted pointer is
// never updated for a redirection that was not installed.
func (e *Engine) Switch(cfg Config, accountID *int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	target, err := e.resolveTarget(cfg, accountID)
	if err != nil {
		return err
	}
	e.logger.Debug().Str("target", target).Msg("resolved switch target")

	// The alias destination must exist before anything at the live path is
	// touched, both for linking and as the rescue destination.
	if exists, err := afero.DirExists(e.fs, target); err != nil {
		return fmt.Errorf("inspect target %s: %w", target, err)
	} else if !exists {
		e.logger.Info().Str("target", target).Msg("creating target directory")
		if err := layout.EnsureMarkedDir(e.fs, target); err != nil {
			return err
		}
	}

	if err := e.reconcileLivePath(cfg.LiveDataPath, target); err != nil {
		return err
	}

	// A broken alias whose metadata could not be read may still occupy the
	// live path. Real data was already rescued above, so force-remove any
	// leftover entry; if something survives, link creation reports it.
	e.junctions.ForceCleanup(cfg.LiveDataPath)

	if err := e.junctions.CreateRedirect(cfg.LiveDataPath, target); err != nil {
		return fmt.Errorf("install redirection: %w", err)
	}

	if err := e.pointer.SetActiveAccount(accountID); err != nil {
		return fmt.Errorf("persist active account: %w", err)
	}

	e.logger.Info().Str("live", cfg.LiveDataPath).Str("target", target).Msg("account switch completed")
	return nil
}

// Inspect classifies the live path and resolves the junction target when
// there is one. Used for status display and drift detection; it takes the
// same lock as Switch so it never observes a mid-switch state.
func (e *Engine) Inspect(cfg Config) Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.classify(cfg.LiveDataPath)
}

func (e *Engine) resolveTarget(cfg Config, accountID *int64) (string, error) {
	if accountID == nil {
		e.logger.Info().Msg("switching to unselected state")
		return layout.SentinelPath(cfg.AccountDataRoot), nil
	}

	folder, err := e.accounts.AccountFolder(*accountID)
	if err != nil {
		return "", fmt.Errorf("resolve account %d: %w", *accountID, err)
	}
	e.logger.Info().Int64("account", *accountID).Str("folder", folder).Msg("switching to account")
	return layout.AccountPath(cfg.AccountDataRoot, folder), nil
}

// reconcileLivePath clears the live path according to its observed state:
// a junction is simply unlinked, a real directory has its contents rescued
// into target first, and an absent path needs nothing.
func (e *Engine) reconcileLivePath(live, target string) error {
	status := e.classify(live)
	e.logger.Debug().Stringer("state", status.State).Str("live", live).Msg("classified live path")

	switch status.State {
	case StateJunction:
		if err := e.junctions.RemoveRedirect(live); err != nil {
			return fmt.Errorf("remove existing redirection: %w", err)
		}
	case StateRealDirectory:
		err := e.mover.MoveTree(live, target)
		var deleteErr *transfer.DeleteError
		if errors.As(err, &deleteErr) {
			// Data is verified at the target; the stale source will be
			// retried by forced cleanup or surface at link creation.
			e.logger.Warn().Err(deleteErr).Msg("rescued data left a stale source entry")
			return nil
		}
		if err != nil {
			return fmt.Errorf("rescue live data: %w", err)
		}
		if err := e.fs.Remove(live); err != nil {
			return fmt.Errorf("remove emptied live directory %s: %w", live, err)
		}
	case StateAbsent:
		// First run, or a previous switch failed after cleanup.
	}
	return nil
}

func (e *Engine) classify(live string) Status {
	if e.junctions.IsRedirect(live) {
		target, err := e.junctions.ResolveRedirect(live)
		if err != nil {
			e.logger.Debug().Err(err).Str("live", live).Msg("junction target unresolvable")
			return Status{State: StateJunction}
		}
		return Status{State: StateJunction, Target: target}
	}
	if ok, err := afero.DirExists(e.fs, live); err == nil && ok {
		return Status{State: StateRealDirectory}
	}
	return Status{State: StateAbsent}
}
