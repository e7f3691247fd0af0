package engine

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every error returned by the engine wraps exactly one of these.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidState = errors.New("invalid state")
)

var (
	ErrPlayerNotFound = fmt.Errorf("player %w", ErrNotFound)
	ErrNotInLobby     = fmt.Errorf("%w: session is not in lobby", ErrInvalidState)
	ErrInLobby        = fmt.Errorf("%w: session is still in lobby", ErrInvalidState)
	ErrGameConcluded  = fmt.Errorf("%w: game is over", ErrInvalidState)
	ErrWordAlreadySet = fmt.Errorf("%w: word already set", ErrInvalidState)
	ErrSessionFull    = fmt.Errorf("%w: session is full", ErrInvalidState)
	ErrNotInTurnOrder = fmt.Errorf("%w: player is not in the turn order", ErrInvalidState)
)

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
