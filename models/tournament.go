package models

import "time"

// TournamentStatus mirrors the stages a tournament moves through.
type TournamentStatus string

const (
	StatusBracket   TournamentStatus = "bracket"
	StatusRace      TournamentStatus = "race"
	StatusCompleted TournamentStatus = "completed"
)

func (s TournamentStatus) IsValid() bool {
	switch s {
	case StatusBracket, StatusRace, StatusCompleted:
		return true
	}
	return false
}

// Tournament holds the entrant list and one elimination bracket per category.
type Tournament struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Status        TournamentStatus     `json:"status"`
	Settings      RaceSettings         `json:"settings"`
	Entrants      []Entrant            `json:"entrants"`
	Brackets      map[Category][]Match `json:"brackets"`
	Unbracketed   []Entrant            `json:"unbracketed,omitempty"`
	ActiveMatchID *string              `json:"active_match_id"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// FindMatch locates a match by id across all categories.
func (t *Tournament) FindMatch(matchID string) (Category, Match, bool) {
	for _, c := range Categories() {
		for _, m := range t.Brackets[c] {
			if m.ID == matchID {
				return c, m, true
			}
		}
	}
	return "", Match{}, false
}

// Champions returns the final winner of every decided category.
func (t *Tournament) Champions() map[Category]string {
	champions := make(map[Category]string)
	for c, matches := range t.Brackets {
		for _, m := range matches {
			if m.IsFinal() && m.WinnerName != nil {
				champions[c] = *m.WinnerName
			}
		}
	}
	return champions
}

// IsComplete reports whether every non-empty bracket has a decided final.
func (t *Tournament) IsComplete() bool {
	decided := 0
	for _, matches := range t.Brackets {
		if len(matches) == 0 {
			continue
		}
		final := false
		for _, m := range matches {
			if m.IsFinal() && m.WinnerName != nil {
				final = true
				break
			}
		}
		if !final {
			return false
		}
		decided++
	}
	return decided > 0
}

// Clone returns a copy whose slices and maps can be modified without touching t.
// Match pointer fields are shared; they are never written through.
func (t *Tournament) Clone() *Tournament {
	c := *t
	c.Entrants = append([]Entrant(nil), t.Entrants...)
	c.Unbracketed = append([]Entrant(nil), t.Unbracketed...)
	c.Brackets = make(map[Category][]Match, len(t.Brackets))
	for k, v := range t.Brackets {
		matches := make([]Match, len(v))
		copy(matches, v)
		c.Brackets[k] = matches
	}
	return &c
}
