// Package race adjudicates a finished two-lane race from the lane statistics
// reported by the race client.
package race

import (
	"errors"
	"fmt"
	"math"

	"github.com/Dosada05/goldsprint/models"
)

// MaxWarnings is the number of false starts that disqualifies a rider.
const MaxWarnings = 3

var (
	ErrNoFinisher      = errors.New("neither rider finished the race")
	ErrTie             = errors.New("riders finished with identical times")
	ErrInvalidSettings = errors.New("race settings must have a positive distance and difficulty")
	ErrMissingName     = errors.New("both riders must be named")
)

// ValidateSettings rejects settings a race cannot be run with.
func ValidateSettings(s models.RaceSettings) error {
	if s.TargetDistance <= 0 || s.Difficulty <= 0 {
		return fmt.Errorf("%w: distance=%.2f difficulty=%.2f", ErrInvalidSettings, s.TargetDistance, s.Difficulty)
	}
	return nil
}

// Disqualified reports whether a rider collected too many false starts.
func Disqualified(p models.PlayerStats) bool {
	return p.Warnings >= MaxWarnings
}

// Decide picks the winner of a race between p1 and p2.
//
// A disqualified rider loses outright. Otherwise the faster finisher wins, and a
// rider who did not finish loses to one who did.
func Decide(p1, p2 models.PlayerStats) (models.RaceResult, error) {
	if p1.Name == "" || p2.Name == "" {
		return models.RaceResult{}, ErrMissingName
	}

	result := models.RaceResult{
		AvgSpeedP1: averageSpeed(p1),
		AvgSpeedP2: averageSpeed(p2),
	}

	dq1, dq2 := Disqualified(p1), Disqualified(p2)
	switch {
	case dq1 && !dq2:
		return disqualification(result, p2, p1), nil
	case dq2 && !dq1:
		return disqualification(result, p1, p2), nil
	case dq1 && dq2:
		// The race stops at the first disqualification, so both flags mean bad input.
		return models.RaceResult{}, fmt.Errorf("%w: both riders disqualified", ErrNoFinisher)
	}

	t1, ok1 := finishTime(p1)
	t2, ok2 := finishTime(p2)
	var winner, loser models.PlayerStats
	switch {
	case ok1 && ok2:
		if t1 == t2 {
			return models.RaceResult{}, ErrTie
		}
		if t1 < t2 {
			winner, loser = p1, p2
		} else {
			winner, loser = p2, p1
		}
		result.Gap = math.Abs(t1 - t2)
	case ok1:
		winner, loser = p1, p2
	case ok2:
		winner, loser = p2, p1
	default:
		return models.RaceResult{}, ErrNoFinisher
	}

	result.WinnerName = winner.Name
	result.LoserName = loser.Name
	result.WinnerTime, _ = finishTime(winner)
	return result, nil
}

func disqualification(result models.RaceResult, winner, loser models.PlayerStats) models.RaceResult {
	result.WinnerName = winner.Name
	result.LoserName = loser.Name
	result.Disqualified = true
	if t, ok := finishTime(winner); ok {
		result.WinnerTime = t
	}
	return result
}

func finishTime(p models.PlayerStats) (float64, bool) {
	if !p.Finished || p.FinishTime == nil || *p.FinishTime <= 0 {
		return 0, false
	}
	return *p.FinishTime, true
}

// averageSpeed is in km/h.
func averageSpeed(p models.PlayerStats) float64 {
	t, ok := finishTime(p)
	if !ok {
		return 0
	}
	return p.Distance / t * 3.6
}
