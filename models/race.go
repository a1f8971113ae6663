package models

const (
	DefaultTargetDistance = 250.0
	DefaultDifficulty     = 0.8
)

// RaceSettings controls how far a race is and how much each stroke moves a player.
type RaceSettings struct {
	TargetDistance float64 `json:"target_distance"` // meters
	Difficulty     float64 `json:"difficulty"`      // meters per stroke
}

func DefaultRaceSettings() RaceSettings {
	return RaceSettings{
		TargetDistance: DefaultTargetDistance,
		Difficulty:     DefaultDifficulty,
	}
}

// PlayerStats is what the race client reports for one lane when a race ends.
type PlayerStats struct {
	Name       string   `json:"name"`
	Distance   float64  `json:"distance"`
	FinishTime *float64 `json:"finish_time,omitempty"` // seconds
	Finished   bool     `json:"finished"`
	Strokes    int      `json:"strokes"`
	Warnings   int      `json:"warnings"`
}

// RaceResult is the adjudicated outcome of a race.
type RaceResult struct {
	WinnerName   string  `json:"winner_name"`
	LoserName    string  `json:"loser_name"`
	WinnerTime   float64 `json:"winner_time"`
	Gap          float64 `json:"gap"`
	AvgSpeedP1   float64 `json:"avg_speed_p1"`
	AvgSpeedP2   float64 `json:"avg_speed_p2"`
	Disqualified bool    `json:"disqualified"`
}
