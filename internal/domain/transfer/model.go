package transfer

import (
	"fmt"
	"time"
)

// Record is one row of the transfer-source snapshot: a player moving
// between two clubs in a given transfer window.
type Record struct {
	PlayerID       int64
	PlayerName     string
	TransferDate   time.Time
	TransferSeason string
	FromClubID     int64
	ToClubID       int64
	FromClubName   string
	ToClubName     string
	TransferFee    *float64
	MarketValueEUR *float64
}

func (r Record) Validate() error {
	if r.PlayerID <= 0 {
		return fmt.Errorf("transfer player id is required")
	}
	if r.PlayerName == "" {
		return fmt.Errorf("transfer player name is required")
	}
	if r.TransferDate.IsZero() {
		return fmt.Errorf("transfer date is required")
	}
	if r.TransferSeason == "" {
		return fmt.Errorf("transfer season is required")
	}
	if r.FromClubID <= 0 || r.ToClubID <= 0 {
		return fmt.Errorf("transfer club ids are required")
	}

	return nil
}

// DedupKey collapses loan-then-buy pairs: two deals in one window between
// the same clubs for the same player count once.
func (r Record) DedupKey() string {
	return fmt.Sprintf("%s|%d|%d|%s", r.TransferSeason, r.FromClubID, r.ToClubID, r.PlayerName)
}

// Mapped is a selected transfer joined to the stats source's naming world.
// Empty mapped names fall back to the transfer-source names.
type Mapped struct {
	Record
	PlayerNameMapped   string
	FromClubNameMapped string
	ToClubNameMapped   string
	FromCompetitionID  string
	ToCompetitionID    string
}

// TransferID identifies one transfer across pipeline artifacts. The player
// name stays unmapped; the club names use the stats source's spelling.
func (m Mapped) TransferID() string {
	return fmt.Sprintf("%s_%s_%s_%s",
		m.PlayerName,
		m.FromClubNameMapped,
		m.ToClubNameMapped,
		m.TransferDate.Format("2006-01-02"),
	)
}

// ScrapeTarget is one row of the scrape listing: a transfer whose
// player's out-of-league history the stats scraper still has to collect.
type ScrapeTarget struct {
	TransferID         string
	PlayerID           int64
	PlayerName         string
	PlayerNameMapped   string
	TransferDate       time.Time
	FromClubName       string
	FromClubNameMapped string
	ToClubName         string
	ToClubNameMapped   string
	FromCompetitionID  string
	FromLeagueName     string
	ToCompetitionID    string
	ToLeagueName       string
}

// Club is one row of the transfer-source club snapshot.
type Club struct {
	ClubID                int64
	ClubCode              string
	Name                  string
	DomesticCompetitionID string
	SquadSize             *int
	AverageAge            *float64
	ForeignersNumber      *int
	NationalTeamPlayers   *int
	StadiumName           string
	StadiumSeats          *int
	LastSeason            *int
}

func (c Club) Validate() error {
	if c.ClubID <= 0 {
		return fmt.Errorf("club id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("club name is required")
	}
	if c.DomesticCompetitionID == "" {
		return fmt.Errorf("club domestic competition id is required")
	}

	return nil
}
