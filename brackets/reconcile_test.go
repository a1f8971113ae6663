package brackets

import (
	"testing"

	"github.com/Dosada05/goldsprint/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playedBracket(t *testing.T, entrants []models.Entrant) []models.Match {
	t.Helper()
	matches := newTestGenerator().Generate(entrants)
	for _, m := range matchesByRound(matches)[0] {
		if m.IsPlayable() {
			matches = RecordWinner(matches, m.ID, *m.SlotAName)
		}
	}
	return matches
}

func TestReconcile_NoActiveBracketRegenerates(t *testing.T) {
	r := NewReconciler(newTestGenerator())
	entrants := makeEntrants(4, models.CategoryMen)

	result := r.Reconcile(entrants, nil, entrants)
	assert.Equal(t, ModeRegenerate, result.Mode)
	assert.Len(t, result.Matches, 3)
}

func TestReconcile_IdenticalListIsUnchangedUpdate(t *testing.T) {
	entrants := makeEntrants(5, models.CategoryMen)
	matches := newTestGenerator().Generate(entrants)

	result := NewReconciler(newTestGenerator()).Reconcile(entrants, matches, entrants)
	assert.Equal(t, ModeUpdate, result.Mode)
	assert.Equal(t, matches, result.Matches)
}

func TestReconcile_RenamePreservesProgress(t *testing.T) {
	entrants := makeEntrants(4, models.CategoryMen)
	matches := playedBracket(t, entrants)

	// player-1 won the first semifinal under the identity shuffle.
	oldName := entrants[0].Name
	renamed := append([]models.Entrant(nil), entrants...)
	renamed[0].Name = "Renamed Rider"

	result := NewReconciler(newTestGenerator()).Reconcile(entrants, matches, renamed)
	require.Equal(t, ModeUpdate, result.Mode)
	require.Len(t, result.Matches, len(matches))

	for i, m := range result.Matches {
		before := matches[i]
		assert.Equal(t, before.ID, m.ID)
		assert.Equal(t, before.NextMatchID, m.NextMatchID)
		assert.Equal(t, before.AdvanceToSlot, m.AdvanceToSlot)
		assert.Equal(t, before.WinnerName == nil, m.WinnerName == nil)

		for _, name := range []*string{m.SlotAName, m.SlotBName, m.WinnerName} {
			if name != nil {
				assert.NotEqual(t, oldName, *name)
			}
		}
	}

	first := result.Matches[0]
	assert.Equal(t, "Renamed Rider", *first.SlotAName)
	assert.Equal(t, "Renamed Rider", *first.WinnerName)
	final := matchesByRound(result.Matches)[1][0]
	assert.Equal(t, "Renamed Rider", *final.SlotAName)

	// The previous bracket is untouched.
	assert.Equal(t, oldName, *matches[0].WinnerName)
}

func TestReconcile_SwappedNamesDoNotCollide(t *testing.T) {
	entrants := makeEntrants(2, models.CategoryMen)
	matches := newTestGenerator().Generate(entrants)

	swapped := append([]models.Entrant(nil), entrants...)
	swapped[0].Name, swapped[1].Name = entrants[1].Name, entrants[0].Name

	result := NewReconciler(newTestGenerator()).Reconcile(entrants, matches, swapped)
	require.Equal(t, ModeUpdate, result.Mode)
	assert.Equal(t, entrants[1].Name, *result.Matches[0].SlotAName)
	assert.Equal(t, entrants[0].Name, *result.Matches[0].SlotBName)
}

func TestReconcile_ReorderedListIsUpdate(t *testing.T) {
	entrants := makeEntrants(3, models.CategoryMen)
	matches := newTestGenerator().Generate(entrants)
	reordered := []models.Entrant{entrants[2], entrants[0], entrants[1]}

	result := NewReconciler(newTestGenerator()).Reconcile(entrants, matches, reordered)
	assert.Equal(t, ModeUpdate, result.Mode)
	assert.Equal(t, matches, result.Matches)
}

func TestReconcile_StructuralChangesRegenerate(t *testing.T) {
	entrants := makeEntrants(4, models.CategoryMen)
	matches := playedBracket(t, entrants)
	r := NewReconciler(newTestGenerator())

	added := append(append([]models.Entrant(nil), entrants...), models.Entrant{ID: "new", Name: "Newcomer", Category: models.CategoryMen})
	result := r.Reconcile(entrants, matches, added)
	assert.Equal(t, ModeRegenerate, result.Mode)
	assert.Len(t, result.Matches, 7)
	assert.False(t, HasRecordedResults(result.Matches))

	removed := entrants[:3]
	assert.Equal(t, ModeRegenerate, r.Plan(entrants, matches, removed))

	replaced := append([]models.Entrant(nil), entrants...)
	replaced[3].ID = "someone-else"
	assert.Equal(t, ModeRegenerate, r.Plan(entrants, matches, replaced))

	duplicated := append([]models.Entrant(nil), entrants...)
	duplicated[3] = duplicated[2]
	assert.Equal(t, ModeRegenerate, r.Plan(entrants, matches, duplicated))
}

func TestReconcileBrackets_RenameAcrossCategories(t *testing.T) {
	entrants := append(makeEntrants(3, models.CategoryMen), makeEntrants(2, models.CategoryWomen)...)
	g := newTestGenerator()
	prev := GenerateBrackets(g, entrants)

	renamed := append([]models.Entrant(nil), entrants...)
	renamed[3].Name = "Fixed Typo"

	mode, updated := NewReconciler(g).ReconcileBrackets(entrants, prev, renamed)
	require.Equal(t, ModeUpdate, mode)
	assert.Equal(t, prev[models.CategoryMen], updated[models.CategoryMen])
	assert.Equal(t, "Fixed Typo", *updated[models.CategoryWomen][0].SlotAName)
}

func TestReconcileBrackets_CategoryMoveRegenerates(t *testing.T) {
	entrants := append(makeEntrants(3, models.CategoryMen), makeEntrants(2, models.CategoryWomen)...)
	g := newTestGenerator()
	prev := GenerateBrackets(g, entrants)

	moved := append([]models.Entrant(nil), entrants...)
	moved[0].Category = models.CategoryWomen

	mode, updated := NewReconciler(g).ReconcileBrackets(entrants, prev, moved)
	require.Equal(t, ModeRegenerate, mode)
	assert.Len(t, updated[models.CategoryMen], 1)
	assert.Len(t, updated[models.CategoryWomen], 3)
}

func TestPlanBrackets_EmptyBracketsRegenerate(t *testing.T) {
	entrants := makeEntrants(1, models.CategoryMen)
	prev := map[models.Category][]models.Match{models.CategoryMen: {}, models.CategoryWomen: {}}
	assert.Equal(t, ModeRegenerate, NewReconciler(newTestGenerator()).PlanBrackets(entrants, prev, entrants))
}

func TestReconcileBrackets_SharedNameRenamedInOneCategoryOnly(t *testing.T) {
	entrants := []models.Entrant{
		{ID: "m1", Name: "Alex", Category: models.CategoryMen},
		{ID: "m2", Name: "Bob", Category: models.CategoryMen},
		{ID: "f1", Name: "Alex", Category: models.CategoryWomen},
		{ID: "f2", Name: "Cara", Category: models.CategoryWomen},
	}
	g := newTestGenerator()
	prev := GenerateBrackets(g, entrants)
	r := NewReconciler(g)

	renamed := append([]models.Entrant(nil), entrants...)
	renamed[0].Name = "Alexander"

	mode, updated := r.ReconcileBrackets(entrants, prev, renamed)
	require.Equal(t, ModeUpdate, mode)
	assert.Equal(t, "Alexander", *updated[models.CategoryMen][0].SlotAName)
	assert.Equal(t, prev[models.CategoryWomen], updated[models.CategoryWomen])
	assert.Equal(t, "Alex", *updated[models.CategoryWomen][0].SlotAName)

	both := append([]models.Entrant(nil), entrants...)
	both[0].Name = "Alexander"
	both[2].Name = "Alexandra"

	mode, updated = r.ReconcileBrackets(entrants, prev, both)
	require.Equal(t, ModeUpdate, mode)
	assert.Equal(t, "Alexander", *updated[models.CategoryMen][0].SlotAName)
	assert.Equal(t, "Alexandra", *updated[models.CategoryWomen][0].SlotAName)
}
