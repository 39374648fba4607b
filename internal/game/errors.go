package game

import "errors"

var (
	// ErrNoSession is returned when an action arrives before a game has been
	// narrated.
	ErrNoSession = errors.New("no session started")
	// ErrBusy is returned while a dice prompt or an oracle call is pending.
	ErrBusy = errors.New("a turn is already in progress")
	// ErrGameOver is returned for actions after the story ended.
	ErrGameOver = errors.New("game over")
	// ErrEmptyAction is returned for blank player input.
	ErrEmptyAction = errors.New("action is empty")
	// ErrNoPendingRoll is returned when a roll arrives with no action waiting
	// for one.
	ErrNoPendingRoll = errors.New("no roll pending")
	// ErrNothingToRetry is returned when no failed call is armed for retry.
	ErrNothingToRetry = errors.New("nothing to retry")
	// ErrInvalidConfig is returned for unknown classes or settings.
	ErrInvalidConfig = errors.New("invalid game config")
)
