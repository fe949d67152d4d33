package postgres

import (
	"database/sql"
	"time"

	"github.com/strikerlab/debutform/internal/domain/clubelo"
)

type eloRatingTableModel struct {
	Rank     int          `db:"rank"`
	Club     string       `db:"club"`
	Country  string       `db:"country"`
	Level    int          `db:"level"`
	Elo      float64      `db:"elo"`
	FromDate time.Time    `db:"from_date"`
	ToDate   sql.NullTime `db:"to_date"`
}

type eloRatingInsertModel struct {
	NormalizedTeam string     `db:"normalized_team"`
	Rank           int        `db:"rank"`
	Club           string     `db:"club"`
	Country        string     `db:"country"`
	Level          int        `db:"level"`
	Elo            float64    `db:"elo"`
	FromDate       time.Time  `db:"from_date"`
	ToDate         *time.Time `db:"to_date"`
}

var eloRatingSelectColumns = []string{
	"rank", "club", "country", "level", "elo", "from_date", "to_date",
}

func eloRatingFromRow(row eloRatingTableModel) clubelo.Rating {
	return clubelo.Rating{
		Rank:    row.Rank,
		Club:    row.Club,
		Country: row.Country,
		Level:   row.Level,
		Elo:     row.Elo,
		From:    row.FromDate,
		To:      nullTimeToPtr(row.ToDate),
	}
}

func eloRatingToInsertModel(team string, r clubelo.Rating) eloRatingInsertModel {
	return eloRatingInsertModel{
		NormalizedTeam: team,
		Rank:           r.Rank,
		Club:           r.Club,
		Country:        r.Country,
		Level:          r.Level,
		Elo:            r.Elo,
		FromDate:       r.From,
		ToDate:         r.To,
	}
}

type formattedEloTableModel struct {
	TeamName           string       `db:"team_name"`
	LeagueName         string       `db:"league_name"`
	NormalizedTeamName string       `db:"normalized_team_name"`
	Rank               int          `db:"rank"`
	Club               string       `db:"club"`
	Country            string       `db:"country"`
	Level              int          `db:"level"`
	Elo                float64      `db:"elo"`
	FromDate           time.Time    `db:"from_date"`
	ToDate             sql.NullTime `db:"to_date"`
}

type formattedEloInsertModel struct {
	TeamName           string     `db:"team_name"`
	LeagueName         string     `db:"league_name"`
	NormalizedTeamName string     `db:"normalized_team_name"`
	Rank               int        `db:"rank"`
	Club               string     `db:"club"`
	Country            string     `db:"country"`
	Level              int        `db:"level"`
	Elo                float64    `db:"elo"`
	FromDate           time.Time  `db:"from_date"`
	ToDate             *time.Time `db:"to_date"`
}

var formattedEloSelectColumns = []string{
	"team_name", "league_name", "normalized_team_name",
	"rank", "club", "country", "level", "elo", "from_date", "to_date",
}

func formattedEloFromRow(row formattedEloTableModel) clubelo.TeamRating {
	return clubelo.TeamRating{
		TeamName:           row.TeamName,
		LeagueName:         row.LeagueName,
		NormalizedTeamName: row.NormalizedTeamName,
		Rating: clubelo.Rating{
			Rank:    row.Rank,
			Club:    row.Club,
			Country: row.Country,
			Level:   row.Level,
			Elo:     row.Elo,
			From:    row.FromDate,
			To:      nullTimeToPtr(row.ToDate),
		},
	}
}

func formattedEloToInsertModel(r clubelo.TeamRating) formattedEloInsertModel {
	return formattedEloInsertModel{
		TeamName:           r.TeamName,
		LeagueName:         r.LeagueName,
		NormalizedTeamName: r.NormalizedTeamName,
		Rank:               r.Rank,
		Club:               r.Club,
		Country:            r.Country,
		Level:              r.Level,
		Elo:                r.Elo,
		FromDate:           r.From,
		ToDate:             r.To,
	}
}
