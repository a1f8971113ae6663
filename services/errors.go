package services

import "errors"

var (
	ErrValidationFailed = errors.New("validation failed")

	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrTournamentCompleted = errors.New("tournament is already completed")
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchNotPlayable    = errors.New("match needs two entrants and no result to be raced")
	ErrRiderNotInMatch     = errors.New("reported riders do not match the match entrants")

	// ErrDestructiveRegenerate is returned when an entrant edit would redraw
	// brackets that already hold race results and the caller did not confirm.
	ErrDestructiveRegenerate = errors.New("entrant change regenerates brackets with recorded results; confirm to proceed")
	ErrResultLocked          = errors.New("result cannot change after the next match was decided")

	ErrAuthInvalidCredentials = errors.New("invalid organizer password")
)
