package repositories

import (
	"testing"
	"time"

	"github.com/Dosada05/goldsprint/brackets"
	"github.com/Dosada05/goldsprint/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTournament() *models.Tournament {
	entrants := []models.Entrant{
		{ID: "1", Name: "Ala", Category: models.CategoryWomen},
		{ID: "2", Name: "Ola", Category: models.CategoryWomen},
		{ID: "3", Name: "Ela", Category: models.CategoryWomen},
		{ID: "4", Name: "Jan", Category: models.CategoryMen},
		{ID: "5", Name: "Piotr", Category: models.CategoryMen},
	}
	g := brackets.NewSingleEliminationGenerator()
	byCategory := brackets.GenerateBrackets(g, entrants)
	for _, m := range byCategory[models.CategoryWomen] {
		if m.IsPlayable() {
			byCategory[models.CategoryWomen] = brackets.RecordWinner(byCategory[models.CategoryWomen], m.ID, *m.SlotBName)
			break
		}
	}

	now := time.Date(2026, 5, 1, 18, 30, 0, 123456789, time.UTC)
	return &models.Tournament{
		ID:            "t-1",
		Name:          "Friday Sprint",
		Status:        models.StatusRace,
		Settings:      models.DefaultRaceSettings(),
		Entrants:      entrants,
		Brackets:      byCategory,
		ActiveMatchID: models.StringPtr(byCategory[models.CategoryMen][0].ID),
		CreatedAt:     now,
		UpdatedAt:     now.Add(time.Minute),
	}
}

func TestSnapshotRoundTripIsByteIdentical(t *testing.T) {
	first, err := EncodeSnapshot(sampleTournament())
	require.NoError(t, err)

	decoded, err := DecodeSnapshot(first)
	require.NoError(t, err)

	second, err := EncodeSnapshot(decoded)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestSnapshotPreservesBracket(t *testing.T) {
	original := sampleTournament()
	data, err := EncodeSnapshot(original)
	require.NoError(t, err)

	decoded, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, original.Brackets, decoded.Brackets)
	assert.Equal(t, original.Entrants, decoded.Entrants)
	assert.True(t, original.UpdatedAt.Equal(decoded.UpdatedAt))
}

func TestDecodeSnapshotRejectsGarbage(t *testing.T) {
	_, err := DecodeSnapshot([]byte("{not json"))
	assert.Error(t, err)
}
