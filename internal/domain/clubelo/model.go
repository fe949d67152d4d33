package clubelo

import (
	"fmt"
	"time"
)

// Rating is one validity interval of a club's Elo history as served by
// the rating API. To is nil for the interval still in force.
type Rating struct {
	Rank    int
	Club    string
	Country string
	Level   int
	Elo     float64
	From    time.Time
	To      *time.Time
}

func (r Rating) Validate() error {
	if r.Club == "" {
		return fmt.Errorf("rating club is required")
	}
	if r.Elo <= 0 {
		return fmt.Errorf("rating elo must be positive")
	}
	if r.From.IsZero() {
		return fmt.Errorf("rating from date is required")
	}
	if r.To != nil && r.To.Before(r.From) {
		return fmt.Errorf("rating interval ends before it starts")
	}

	return nil
}

// CoversDate reports whether the rating interval contains date.
func (r Rating) CoversDate(date time.Time) bool {
	if date.Before(r.From) {
		return false
	}
	if r.To == nil {
		return true
	}
	return !date.After(*r.To)
}

// TeamRating is a rating joined to the stats-source team directory.
type TeamRating struct {
	TeamName           string
	LeagueName         string
	NormalizedTeamName string
	Rating
}

// Attachment records the ratings resolved for one match-log row. Nil elo
// values mean the club had no usable rating on that date.
type Attachment struct {
	Split         string
	PlayerMatchID string
	Team          string
	Opponent      string
	League        string
	MatchDate     time.Time
	TeamElo       *float64
	OpponentElo   *float64
	EloDiff       *float64
}
