package game

import "errors"

var (
	ErrInvalidToken = errors.New("invalid or tampered round token")
	ErrInvalidGuess = errors.New("guess is empty or too long")
	ErrUnknownGuess = errors.New("guess does not name a known pokemon")
	ErrUnknownMode  = errors.New("unknown game mode")
	ErrRoundBuild   = errors.New("could not build a round")
)
