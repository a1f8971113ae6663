package brackets

import (
	"fmt"

	"github.com/Dosada05/goldsprint/models"
)

// RecordWinner returns a copy of matches in which matchID is won by winnerName and
// the winner occupies its slot in the linked next match. An unknown matchID returns
// matches unchanged. The winner is not checked against the match slots; use
// RecordWinnerChecked for results coming from a race.
func RecordWinner(matches []models.Match, matchID string, winnerName string) []models.Match {
	index := indexByID(matches)
	i, ok := index[matchID]
	if !ok {
		return matches
	}

	updated := make([]models.Match, len(matches))
	copy(updated, matches)
	advanceWinner(updated, index, i, winnerName)
	return updated
}

// RecordWinnerChecked is RecordWinner with the preconditions of a live result:
// the match exists, the winner sits in one of its slots, and the result is not
// being changed after the next match was already decided.
func RecordWinnerChecked(matches []models.Match, matchID string, winnerName string) ([]models.Match, error) {
	index := indexByID(matches)
	i, ok := index[matchID]
	if !ok {
		return matches, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}

	m := matches[i]
	if !m.HasEntrant(winnerName) {
		return matches, fmt.Errorf("%w: %q in match %s", ErrWinnerNotInMatch, winnerName, matchID)
	}

	changing := m.WinnerName != nil && *m.WinnerName != winnerName
	if changing && m.NextMatchID != nil {
		if j, ok := index[*m.NextMatchID]; ok && matches[j].WinnerName != nil {
			return matches, fmt.Errorf("%w: match %s feeds %s", ErrDownstreamDecided, matchID, matches[j].ID)
		}
	}

	return RecordWinner(matches, matchID, winnerName), nil
}

// advanceWinner writes the winner of matches[i] and pushes it into the linked slot.
// It is shared by bracket generation (byes) and live results.
func advanceWinner(matches []models.Match, index map[string]int, i int, winnerName string) {
	m := &matches[i]
	m.WinnerName = models.StringPtr(winnerName)

	if m.NextMatchID == nil || m.AdvanceToSlot == nil {
		return
	}
	j, ok := index[*m.NextMatchID]
	if !ok {
		return
	}

	next := &matches[j]
	if *m.AdvanceToSlot == models.SlotA {
		next.SlotAName = models.StringPtr(winnerName)
	} else {
		next.SlotBName = models.StringPtr(winnerName)
	}
}

func indexByID(matches []models.Match) map[string]int {
	index := make(map[string]int, len(matches))
	for i, m := range matches {
		index[m.ID] = i
	}
	return index
}

// HasRecordedResults reports whether any match was decided by a race.
// Byes do not count.
func HasRecordedResults(matches []models.Match) bool {
	for _, m := range matches {
		if m.HasResult() {
			return true
		}
	}
	return false
}
