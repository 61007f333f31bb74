package service

import (
	"errors"
	"fmt"
)

var (
	// ErrSkipped marks a player that was deliberately not analysed. It is
	// not a failure; callers move on to the next player.
	ErrSkipped   = errors.New("player skipped")
	ErrLowVolume = fmt.Errorf("%w: low three-point volume", ErrSkipped)

	ErrPlayerNotFound = errors.New("player not found")
	ErrTeamNotFound   = errors.New("team not found")
)
