package repositories

import (
	"encoding/json"
	"fmt"

	"github.com/Dosada05/goldsprint/models"
)

// EncodeSnapshot serializes a tournament with its brackets keyed by category.
// Encoding a decoded snapshot reproduces the same bytes.
func EncodeSnapshot(t *models.Tournament) ([]byte, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tournament snapshot %s: %w", t.ID, err)
	}
	return b, nil
}

func DecodeSnapshot(data []byte) (*models.Tournament, error) {
	var t models.Tournament
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode tournament snapshot: %w", err)
	}
	return &t, nil
}
