package postgres

import (
	"database/sql"
	"time"

	"github.com/strikerlab/debutform/internal/domain/transfer"
)

type transferTableModel struct {
	PlayerID       int64           `db:"player_id"`
	PlayerName     string          `db:"player_name"`
	TransferDate   time.Time       `db:"transfer_date"`
	TransferSeason string          `db:"transfer_season"`
	FromClubID     int64           `db:"from_club_id"`
	ToClubID       int64           `db:"to_club_id"`
	FromClubName   string          `db:"from_club_name"`
	ToClubName     string          `db:"to_club_name"`
	TransferFee    sql.NullFloat64 `db:"transfer_fee"`
	MarketValueEUR sql.NullFloat64 `db:"market_value_in_eur"`
}

type transferInsertModel struct {
	PlayerID       int64     `db:"player_id"`
	PlayerName     string    `db:"player_name"`
	TransferDate   time.Time `db:"transfer_date"`
	TransferSeason string    `db:"transfer_season"`
	FromClubID     int64     `db:"from_club_id"`
	ToClubID       int64     `db:"to_club_id"`
	FromClubName   string    `db:"from_club_name"`
	ToClubName     string    `db:"to_club_name"`
	TransferFee    *float64  `db:"transfer_fee"`
	MarketValueEUR *float64  `db:"market_value_in_eur"`
}

var transferSelectColumns = []string{
	"player_id", "player_name", "transfer_date", "transfer_season",
	"from_club_id", "to_club_id", "from_club_name", "to_club_name",
	"transfer_fee", "market_value_in_eur",
}

func transferFromRow(row transferTableModel) transfer.Record {
	return transfer.Record{
		PlayerID:       row.PlayerID,
		PlayerName:     row.PlayerName,
		TransferDate:   row.TransferDate,
		TransferSeason: row.TransferSeason,
		FromClubID:     row.FromClubID,
		ToClubID:       row.ToClubID,
		FromClubName:   row.FromClubName,
		ToClubName:     row.ToClubName,
		TransferFee:    nullFloat64ToPtr(row.TransferFee),
		MarketValueEUR: nullFloat64ToPtr(row.MarketValueEUR),
	}
}

func transferToInsertModel(r transfer.Record) transferInsertModel {
	return transferInsertModel{
		PlayerID:       r.PlayerID,
		PlayerName:     r.PlayerName,
		TransferDate:   r.TransferDate,
		TransferSeason: r.TransferSeason,
		FromClubID:     r.FromClubID,
		ToClubID:       r.ToClubID,
		FromClubName:   r.FromClubName,
		ToClubName:     r.ToClubName,
		TransferFee:    r.TransferFee,
		MarketValueEUR: r.MarketValueEUR,
	}
}

type mappedTransferTableModel struct {
	PlayerID           int64           `db:"player_id"`
	PlayerName         string          `db:"player_name"`
	TransferDate       time.Time       `db:"transfer_date"`
	TransferSeason     string          `db:"transfer_season"`
	FromClubID         int64           `db:"from_club_id"`
	ToClubID           int64           `db:"to_club_id"`
	FromClubName       string          `db:"from_club_name"`
	ToClubName         string          `db:"to_club_name"`
	TransferFee        sql.NullFloat64 `db:"transfer_fee"`
	MarketValueEUR     sql.NullFloat64 `db:"market_value_in_eur"`
	PlayerNameMapped   string          `db:"player_name_mapped"`
	FromClubNameMapped string          `db:"from_club_name_mapped"`
	ToClubNameMapped   string          `db:"to_club_name_mapped"`
	FromCompetitionID  string          `db:"from_competition_id"`
	ToCompetitionID    string          `db:"to_competition_id"`
}

type mappedTransferInsertModel struct {
	PlayerID           int64     `db:"player_id"`
	PlayerName         string    `db:"player_name"`
	TransferDate       time.Time `db:"transfer_date"`
	TransferSeason     string    `db:"transfer_season"`
	FromClubID         int64     `db:"from_club_id"`
	ToClubID           int64     `db:"to_club_id"`
	FromClubName       string    `db:"from_club_name"`
	ToClubName         string    `db:"to_club_name"`
	TransferFee        *float64  `db:"transfer_fee"`
	MarketValueEUR     *float64  `db:"market_value_in_eur"`
	PlayerNameMapped   string    `db:"player_name_mapped"`
	FromClubNameMapped string    `db:"from_club_name_mapped"`
	ToClubNameMapped   string    `db:"to_club_name_mapped"`
	FromCompetitionID  string    `db:"from_competition_id"`
	ToCompetitionID    string    `db:"to_competition_id"`
}

var mappedTransferSelectColumns = append(append([]string(nil), transferSelectColumns...),
	"player_name_mapped", "from_club_name_mapped", "to_club_name_mapped",
	"from_competition_id", "to_competition_id",
)

func mappedFromRow(row mappedTransferTableModel) transfer.Mapped {
	return transfer.Mapped{
		Record: transfer.Record{
			PlayerID:       row.PlayerID,
			PlayerName:     row.PlayerName,
			TransferDate:   row.TransferDate,
			TransferSeason: row.TransferSeason,
			FromClubID:     row.FromClubID,
			ToClubID:       row.ToClubID,
			FromClubName:   row.FromClubName,
			ToClubName:     row.ToClubName,
			TransferFee:    nullFloat64ToPtr(row.TransferFee),
			MarketValueEUR: nullFloat64ToPtr(row.MarketValueEUR),
		},
		PlayerNameMapped:   row.PlayerNameMapped,
		FromClubNameMapped: row.FromClubNameMapped,
		ToClubNameMapped:   row.ToClubNameMapped,
		FromCompetitionID:  row.FromCompetitionID,
		ToCompetitionID:    row.ToCompetitionID,
	}
}

func mappedToInsertModel(m transfer.Mapped) mappedTransferInsertModel {
	return mappedTransferInsertModel{
		PlayerID:           m.PlayerID,
		PlayerName:         m.PlayerName,
		TransferDate:       m.TransferDate,
		TransferSeason:     m.TransferSeason,
		FromClubID:         m.FromClubID,
		ToClubID:           m.ToClubID,
		FromClubName:       m.FromClubName,
		ToClubName:         m.ToClubName,
		TransferFee:        m.TransferFee,
		MarketValueEUR:     m.MarketValueEUR,
		PlayerNameMapped:   m.PlayerNameMapped,
		FromClubNameMapped: m.FromClubNameMapped,
		ToClubNameMapped:   m.ToClubNameMapped,
		FromCompetitionID:  m.FromCompetitionID,
		ToCompetitionID:    m.ToCompetitionID,
	}
}

type clubTableModel struct {
	ClubID                int64           `db:"club_id"`
	ClubCode              string          `db:"club_code"`
	Name                  string          `db:"name"`
	DomesticCompetitionID string          `db:"domestic_competition_id"`
	SquadSize             sql.NullInt64   `db:"squad_size"`
	AverageAge            sql.NullFloat64 `db:"average_age"`
	ForeignersNumber      sql.NullInt64   `db:"foreigners_number"`
	NationalTeamPlayers   sql.NullInt64   `db:"national_team_players"`
	StadiumName           string          `db:"stadium_name"`
	StadiumSeats          sql.NullInt64   `db:"stadium_seats"`
	LastSeason            sql.NullInt64   `db:"last_season"`
}

type clubInsertModel struct {
	ClubID                int64    `db:"club_id"`
	ClubCode              string   `db:"club_code"`
	Name                  string   `db:"name"`
	DomesticCompetitionID string   `db:"domestic_competition_id"`
	SquadSize             *int64   `db:"squad_size"`
	AverageAge            *float64 `db:"average_age"`
	ForeignersNumber      *int64   `db:"foreigners_number"`
	NationalTeamPlayers   *int64   `db:"national_team_players"`
	StadiumName           string   `db:"stadium_name"`
	StadiumSeats          *int64   `db:"stadium_seats"`
	LastSeason            *int64   `db:"last_season"`
}

var clubSelectColumns = []string{
	"club_id", "club_code", "name", "domestic_competition_id",
	"squad_size", "average_age", "foreigners_number", "national_team_players",
	"stadium_name", "stadium_seats", "last_season",
}

func clubFromRow(row clubTableModel) transfer.Club {
	return transfer.Club{
		ClubID:                row.ClubID,
		ClubCode:              row.ClubCode,
		Name:                  row.Name,
		DomesticCompetitionID: row.DomesticCompetitionID,
		SquadSize:             nullInt64ToIntPtr(row.SquadSize),
		AverageAge:            nullFloat64ToPtr(row.AverageAge),
		ForeignersNumber:      nullInt64ToIntPtr(row.ForeignersNumber),
		NationalTeamPlayers:   nullInt64ToIntPtr(row.NationalTeamPlayers),
		StadiumName:           row.StadiumName,
		StadiumSeats:          nullInt64ToIntPtr(row.StadiumSeats),
		LastSeason:            nullInt64ToIntPtr(row.LastSeason),
	}
}

func clubToInsertModel(c transfer.Club) clubInsertModel {
	return clubInsertModel{
		ClubID:                c.ClubID,
		ClubCode:              c.ClubCode,
		Name:                  c.Name,
		DomesticCompetitionID: c.DomesticCompetitionID,
		SquadSize:             intPtrToNullable(c.SquadSize),
		AverageAge:            c.AverageAge,
		ForeignersNumber:      intPtrToNullable(c.ForeignersNumber),
		NationalTeamPlayers:   intPtrToNullable(c.NationalTeamPlayers),
		StadiumName:           c.StadiumName,
		StadiumSeats:          intPtrToNullable(c.StadiumSeats),
		LastSeason:            intPtrToNullable(c.LastSeason),
	}
}
