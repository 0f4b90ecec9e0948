package cli

import "errors"

// ErrPromptCancelled indicates that the user aborted an interactive prompt.
var ErrPromptCancelled = errors.New("prompt cancelled")

// Switch preconditions: an alias swap under a running client or game can
// corrupt in-flight writes, so these are refused before any filesystem
// change is attempted.
var (
	ErrClientRunning = errors.New("cannot switch accounts while the Riot Client is running")
	ErrGameRunning   = errors.New("cannot switch accounts while VALORANT is running")
)
