package brackets

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/Dosada05/goldsprint/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noShuffle(int, func(i, j int)) {}

func counterIDs() IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("m%d", n)
	}
}

func newTestGenerator() *SingleEliminationGenerator {
	return NewSingleEliminationGenerator(WithShuffler(noShuffle), WithIDFunc(counterIDs()))
}

func makeEntrants(n int, category models.Category) []models.Entrant {
	entrants := make([]models.Entrant, n)
	for i := range entrants {
		entrants[i] = models.Entrant{
			ID:       fmt.Sprintf("%s-id-%d", category, i+1),
			Name:     fmt.Sprintf("%s-player-%d", category, i+1),
			Category: category,
		}
	}
	return entrants
}

func matchesByRound(matches []models.Match) map[int][]models.Match {
	rounds := make(map[int][]models.Match)
	for _, m := range matches {
		rounds[m.RoundIndex] = append(rounds[m.RoundIndex], m)
	}
	return rounds
}

func TestBracketSize(t *testing.T) {
	cases := map[int]int{1: 1, 2: 2, 3: 4, 4: 4, 5: 8, 7: 8, 8: 8, 9: 16, 16: 16, 17: 32}
	for n, want := range cases {
		assert.Equal(t, want, BracketSize(n), "n=%d", n)
	}
}

func TestRoundLabel(t *testing.T) {
	assert.Equal(t, "Final", RoundLabel(0, 1))
	assert.Equal(t, "Semifinal", RoundLabel(0, 2))
	assert.Equal(t, "Final", RoundLabel(1, 2))
	assert.Equal(t, "Quarterfinal", RoundLabel(1, 4))
	assert.Equal(t, "Round 1", RoundLabel(0, 4))
	assert.Equal(t, "Round 2", RoundLabel(1, 5))
}

func TestGenerate_Structure(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 7, 8, 9, 16} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			matches := newTestGenerator().Generate(makeEntrants(n, models.CategoryMen))
			size := BracketSize(n)
			rounds := matchesByRound(matches)

			totalRounds := 0
			for s := size; s > 1; s /= 2 {
				totalRounds++
			}
			require.Len(t, rounds, totalRounds)
			assert.Len(t, matches, size-1)
			assert.Len(t, rounds[0], size/2)
			for r := 1; r < totalRounds; r++ {
				assert.Len(t, rounds[r], (len(rounds[r-1])+1)/2, "round %d", r)
			}

			finals := 0
			for _, m := range matches {
				if m.NextMatchID == nil {
					finals++
					assert.Nil(t, m.AdvanceToSlot)
					assert.Equal(t, "Final", m.RoundLabel)
				}
			}
			assert.Equal(t, 1, finals)

			for r := 0; r < totalRounds-1; r++ {
				for i, m := range rounds[r] {
					require.NotNil(t, m.NextMatchID)
					require.NotNil(t, m.AdvanceToSlot)
					assert.Equal(t, rounds[r+1][i/2].ID, *m.NextMatchID)
					if i%2 == 0 {
						assert.Equal(t, models.SlotA, *m.AdvanceToSlot)
					} else {
						assert.Equal(t, models.SlotB, *m.AdvanceToSlot)
					}
				}
			}

			seen := make(map[string]int)
			byes := 0
			for _, m := range rounds[0] {
				assert.False(t, m.SlotAName == nil && m.SlotBName == nil, "empty first-round match %s", m.ID)
				if m.SlotAName != nil {
					seen[*m.SlotAName]++
				}
				if m.SlotBName != nil {
					seen[*m.SlotBName]++
				}
				if m.IsBye() {
					byes++
					require.NotNil(t, m.WinnerName)
					if m.SlotAName != nil {
						assert.Equal(t, *m.SlotAName, *m.WinnerName)
					} else {
						assert.Equal(t, *m.SlotBName, *m.WinnerName)
					}
				} else {
					assert.Nil(t, m.WinnerName)
				}
			}
			assert.Equal(t, size-n, byes)
			assert.Len(t, seen, n)
			for name, count := range seen {
				assert.Equal(t, 1, count, "%s placed more than once", name)
			}
		})
	}
}

func TestGenerate_ByeWinnersReachNextRound(t *testing.T) {
	for _, n := range []int{3, 5, 6, 7, 9, 12} {
		matches := newTestGenerator().Generate(makeEntrants(n, models.CategoryWomen))
		byID := make(map[string]models.Match, len(matches))
		for _, m := range matches {
			byID[m.ID] = m
		}

		for _, m := range matches {
			if !m.IsBye() {
				continue
			}
			next := byID[*m.NextMatchID]
			slotName := next.SlotName(*m.AdvanceToSlot)
			require.NotNil(t, slotName, "n=%d: bye winner of %s lost", n, m.ID)
			assert.Equal(t, *m.WinnerName, *slotName)
		}
	}
}

func TestGenerate_NoByeBeyondFirstRound(t *testing.T) {
	for n := 2; n <= 33; n++ {
		matches := NewSingleEliminationGenerator().Generate(makeEntrants(n, models.CategoryMen))
		for _, m := range matches {
			if m.RoundIndex == 0 {
				continue
			}
			assert.Nil(t, m.WinnerName, "n=%d: match %s decided at generation", n, m.ID)
			assert.False(t, m.IsBye(), "n=%d: bye in round %d", n, m.RoundIndex)
		}
	}
}

func TestGenerate_ThreeEntrants(t *testing.T) {
	entrants := []models.Entrant{
		{ID: "1", Name: "A", Category: models.CategoryMen},
		{ID: "2", Name: "B", Category: models.CategoryMen},
		{ID: "3", Name: "C", Category: models.CategoryMen},
	}
	matches := newTestGenerator().Generate(entrants)
	rounds := matchesByRound(matches)

	require.Len(t, rounds[0], 2)
	require.Len(t, rounds[1], 1)

	// Identity shuffle: A gets the bye, B meets C.
	bye, race := rounds[0][0], rounds[0][1]
	assert.Equal(t, "A", *bye.SlotAName)
	assert.Nil(t, bye.SlotBName)
	assert.Equal(t, "A", *bye.WinnerName)
	assert.Equal(t, "B", *race.SlotAName)
	assert.Equal(t, "C", *race.SlotBName)
	assert.Nil(t, race.WinnerName)

	final := rounds[1][0]
	assert.Equal(t, "A", *final.SlotAName)
	assert.Nil(t, final.SlotBName)
	assert.Nil(t, final.WinnerName)
	assert.Nil(t, final.NextMatchID)
}

func TestGenerate_FewerThanTwoEntrants(t *testing.T) {
	g := newTestGenerator()
	assert.Empty(t, g.Generate(nil))
	assert.Empty(t, g.Generate(makeEntrants(1, models.CategoryMen)))
}

func TestGenerate_UniqueIDs(t *testing.T) {
	matches := NewSingleEliminationGenerator().Generate(makeEntrants(16, models.CategoryMen))
	ids := make(map[string]bool)
	for _, m := range matches {
		assert.NotEmpty(t, m.ID)
		assert.False(t, ids[m.ID], "duplicate id %s", m.ID)
		ids[m.ID] = true
	}
}

func TestGenerate_SeededShuffleIsReproducible(t *testing.T) {
	seeded := func() Shuffler {
		return rand.New(rand.NewPCG(7, 11)).Shuffle
	}
	entrants := makeEntrants(9, models.CategoryMen)

	first := NewSingleEliminationGenerator(WithShuffler(seeded()), WithIDFunc(counterIDs())).Generate(entrants)
	second := NewSingleEliminationGenerator(WithShuffler(seeded()), WithIDFunc(counterIDs())).Generate(entrants)
	assert.Equal(t, first, second)
}

func TestGenerate_DoesNotReorderInput(t *testing.T) {
	entrants := makeEntrants(6, models.CategoryMen)
	original := append([]models.Entrant(nil), entrants...)

	reverse := func(n int, swap func(i, j int)) {
		for i := 0; i < n/2; i++ {
			swap(i, n-1-i)
		}
	}
	NewSingleEliminationGenerator(WithShuffler(reverse)).Generate(entrants)
	assert.Equal(t, original, entrants)
}

func TestGenerateBrackets_SplitsCategories(t *testing.T) {
	entrants := append(makeEntrants(5, models.CategoryMen), makeEntrants(1, models.CategoryWomen)...)
	brackets := GenerateBrackets(newTestGenerator(), entrants)

	assert.Len(t, brackets[models.CategoryMen], 7)
	assert.Empty(t, brackets[models.CategoryWomen])

	lone := Unbracketed(entrants)
	require.Len(t, lone, 1)
	assert.Equal(t, models.CategoryWomen, lone[0].Category)
}
