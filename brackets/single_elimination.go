// goldsprint/brackets/single_elimination.go
package brackets

import (
	"fmt"
	"math/bits"

	"github.com/Dosada05/goldsprint/models"
)

type SingleEliminationGenerator struct {
	shuffle Shuffler
	newID   IDFunc
}

// NewSingleEliminationGenerator returns a generator that seeds uniformly at random.
// The draw makes no attempt at fairness beyond the shuffle itself.
func NewSingleEliminationGenerator(opts ...Option) *SingleEliminationGenerator {
	shuffle, newID := defaultOptions()
	g := &SingleEliminationGenerator{shuffle: shuffle, newID: newID}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

func (g *SingleEliminationGenerator) Generate(entrants []models.Entrant) []models.Match {
	n := len(entrants)
	if n < 2 {
		return []models.Match{}
	}

	shuffled := make([]models.Entrant, n)
	copy(shuffled, entrants)
	g.shuffle(n, func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	names := make([]string, n)
	for i, e := range shuffled {
		names[i] = e.Name
	}

	size := BracketSize(n)
	totalRounds := bits.TrailingZeros(uint(size))
	padded := padEntrants(names, size)

	matches := make([]models.Match, 0, size-1)
	roundStart := make([]int, totalRounds)

	for r := 0; r < totalRounds; r++ {
		roundStart[r] = len(matches)
		matchesInRound := size >> (r + 1)

		for i := 0; i < matchesInRound; i++ {
			m := models.Match{
				ID:         g.newID(),
				RoundIndex: r,
				RoundLabel: RoundLabel(r, totalRounds),
			}
			// Later rounds start empty and are filled by propagation.
			if r == 0 {
				m.SlotAName = padded[2*i]
				m.SlotBName = padded[2*i+1]
				switch {
				case m.SlotAName != nil && m.SlotBName == nil:
					m.WinnerName = m.SlotAName
				case m.SlotAName == nil && m.SlotBName != nil:
					m.WinnerName = m.SlotBName
				}
			}
			matches = append(matches, m)
		}
	}

	for r := 0; r < totalRounds-1; r++ {
		matchesInRound := size >> (r + 1)
		for i := 0; i < matchesInRound; i++ {
			next := matches[roundStart[r+1]+i/2]
			slot := models.SlotA
			if i%2 == 1 {
				slot = models.SlotB
			}
			matches[roundStart[r]+i].NextMatchID = models.StringPtr(next.ID)
			matches[roundStart[r]+i].AdvanceToSlot = models.SlotPtr(slot)
		}
	}

	// Matches are stored round by round, so a single forward pass carries every
	// bye into the next round before that round is visited.
	index := indexByID(matches)
	for i := range matches {
		if matches[i].WinnerName != nil {
			advanceWinner(matches, index, i, *matches[i].WinnerName)
		}
	}

	return matches
}

// BracketSize is the smallest power of two that holds n entrants.
func BracketSize(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// RoundLabel names a round for display. It carries no meaning for bracket logic.
func RoundLabel(roundIndex, totalRounds int) string {
	switch totalRounds - 1 - roundIndex {
	case 0:
		return "Final"
	case 1:
		return "Semifinal"
	case 2:
		return "Quarterfinal"
	default:
		return fmt.Sprintf("Round %d", roundIndex+1)
	}
}

// padEntrants lays names out in first-round slot order, inserting a nil opponent
// for every bye. Each bye takes slot B of a distinct match, so no first-round match
// is ever empty; bye matches are spread across the halves by bit-reversed index.
func padEntrants(names []string, size int) []*string {
	matchCount := size / 2
	byes := size - len(names)
	width := bits.TrailingZeros(uint(matchCount))

	isBye := make([]bool, matchCount)
	for k := 0; k < byes; k++ {
		isBye[reverseIndex(k, width)] = true
	}

	padded := make([]*string, 0, size)
	next := 0
	for i := 0; i < matchCount; i++ {
		padded = append(padded, models.StringPtr(names[next]))
		next++
		if isBye[i] {
			padded = append(padded, nil)
			continue
		}
		padded = append(padded, models.StringPtr(names[next]))
		next++
	}
	return padded
}

func reverseIndex(k, width int) int {
	if width == 0 {
		return 0
	}
	return int(bits.Reverse(uint(k)) >> (bits.UintSize - width))
}
