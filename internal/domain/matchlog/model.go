package matchlog

import (
	"fmt"
	"time"
)

// Entry is one player's line from one match of the stats-source logs.
// Numeric fields are pointers because the source leaves gaps: a nil
// count is unknown, a zero count is a real zero.
type Entry struct {
	Date        time.Time
	DayOfWeek   string
	Round       string
	Venue       string
	Result      string
	Team        string
	Opponent    string
	GameStarted string
	Position    string

	Minutes            *int
	Goals              *int
	Assists            *int
	PensMade           *int
	PensAtt            *int
	Shots              *int
	ShotsOnTarget      *int
	CardsYellow        *int
	CardsRed           *int
	Touches            *int
	Tackles            *int
	Interceptions      *int
	Blocks             *int
	XG                 *float64
	NPXG               *float64
	XGAssist           *float64
	SCA                *float64
	GCA                *float64
	PassesCompleted    *int
	Passes             *int
	PassesPct          *float64
	ProgressivePasses  *int
	Carries            *int
	ProgressiveCarries *int
	TakeOns            *int
	TakeOnsWon         *int

	PlayerName string
	PlayerID   string
	StatType   string
	Season     string
	League     string
}

func (e Entry) Validate() error {
	if e.Date.IsZero() {
		return fmt.Errorf("match log date is required")
	}
	if e.PlayerID == "" {
		return fmt.Errorf("match log player id is required")
	}
	if e.PlayerName == "" {
		return fmt.Errorf("match log player name is required")
	}

	return nil
}

// MatchID identifies the fixture independent of which player logged it.
func (e Entry) MatchID() string {
	return fmt.Sprintf("%s_%s_%s", e.Team, e.Opponent, e.Date.Format("2006-01-02"))
}

// PlayerMatchID identifies one player's appearance in one fixture. It is
// the key the train/test split is computed over.
func (e Entry) PlayerMatchID() string {
	return fmt.Sprintf("%s_%s", e.PlayerID, e.MatchID())
}

// Scored reports whether the player scored, and whether that is knowable.
func (e Entry) Scored() (scored, known bool) {
	if e.Goals == nil {
		return false, false
	}
	return *e.Goals > 0, true
}

// PostTransferEntry is a match-log entry annotated as one of a player's
// first matches after a transfer.
type PostTransferEntry struct {
	Entry
	TransferID               string
	TransferDate             time.Time
	FromClub                 string
	ToClub                   string
	MatchNumberAfterTransfer int
	DaysSinceTransfer        int
}

func (p PostTransferEntry) Validate() error {
	if err := p.Entry.Validate(); err != nil {
		return err
	}
	if p.TransferID == "" {
		return fmt.Errorf("post-transfer entry transfer id is required")
	}
	if p.TransferDate.IsZero() {
		return fmt.Errorf("post-transfer entry transfer date is required")
	}
	if p.MatchNumberAfterTransfer < 1 {
		return fmt.Errorf("post-transfer match number starts at 1")
	}
	if p.DaysSinceTransfer < 0 {
		return fmt.Errorf("post-transfer entry predates its transfer")
	}

	return nil
}
