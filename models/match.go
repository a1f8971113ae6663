package models

// Slot is one of the two opponent positions of a match.
type Slot string

const (
	SlotA Slot = "A"
	SlotB Slot = "B"
)

// Match is a single pairing in an elimination bracket.
//
// A nil slot is either a bye (round 0) or a winner not yet known (later rounds).
// NextMatchID and AdvanceToSlot are nil only for the final.
type Match struct {
	ID            string  `json:"id"`
	RoundIndex    int     `json:"round_index"`
	RoundLabel    string  `json:"round_label"`
	SlotAName     *string `json:"slot_a_name"`
	SlotBName     *string `json:"slot_b_name"`
	WinnerName    *string `json:"winner_name"`
	NextMatchID   *string `json:"next_match_id"`
	AdvanceToSlot *Slot   `json:"advance_to_slot"`
}

// SlotName returns the occupant of the given slot.
func (m Match) SlotName(s Slot) *string {
	if s == SlotA {
		return m.SlotAName
	}
	return m.SlotBName
}

// IsBye reports whether the match has exactly one occupant and sits in the first round.
func (m Match) IsBye() bool {
	return m.RoundIndex == 0 && (m.SlotAName == nil) != (m.SlotBName == nil)
}

// IsPlayable reports whether both opponents are known and no result is recorded yet.
func (m Match) IsPlayable() bool {
	return m.SlotAName != nil && m.SlotBName != nil && m.WinnerName == nil
}

// HasResult reports whether the match was decided by a race, as opposed to a bye.
func (m Match) HasResult() bool {
	return m.WinnerName != nil && m.SlotAName != nil && m.SlotBName != nil
}

// IsFinal reports whether the match has no successor.
func (m Match) IsFinal() bool {
	return m.NextMatchID == nil
}

// HasEntrant reports whether name occupies either slot.
func (m Match) HasEntrant(name string) bool {
	return (m.SlotAName != nil && *m.SlotAName == name) ||
		(m.SlotBName != nil && *m.SlotBName == name)
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}

// SlotPtr returns a pointer to a copy of s.
func SlotPtr(s Slot) *Slot {
	return &s
}
