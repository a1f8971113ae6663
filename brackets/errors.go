package brackets

import "errors"

var (
	ErrMatchNotFound     = errors.New("match not found in bracket")
	ErrWinnerNotInMatch  = errors.New("winner does not occupy either slot of the match")
	ErrDownstreamDecided = errors.New("next match already has a result; the winner can no longer change")
)
