package snapshot

import (
	"context"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"

	"github.com/strikerlab/debutform/internal/domain/transfer"
)

// Decoder turns provider snapshot streams into validated domain rows.
type Decoder struct {
	validate *validator.Validate
}

func NewDecoder() *Decoder {
	return &Decoder{validate: validator.New()}
}

type transferRowDTO struct {
	PlayerID       int64  `validate:"required,gt=0"`
	PlayerName     string `validate:"required"`
	TransferSeason string `validate:"required,len=5"`
	FromClubID     int64  `validate:"required,gt=0"`
	ToClubID       int64  `validate:"required,gt=0"`
}

var transferColumns = []string{
	"player_id", "transfer_date", "transfer_season",
	"from_club_id", "to_club_id", "from_club_name", "to_club_name",
	"transfer_fee", "market_value_in_eur", "player_name",
}

// Transfers decodes the transfer-source snapshot. Invalid rows are skipped
// with a warning.
func (d *Decoder) Transfers(ctx context.Context, r io.Reader) ([]transfer.Record, []Warning, error) {
	t, warnings, err := readTable(r)
	if err != nil {
		return nil, nil, err
	}

	records := make([]transfer.Record, 0, len(t.rows))
	for i, row := range t.rows {
		rowNum := i + 2

		playerID, okID := parseInt64(t.cell(row, "player_id"))
		fromClubID, okFrom := parseInt64(t.cell(row, "from_club_id"))
		toClubID, okTo := parseInt64(t.cell(row, "to_club_id"))
		if !okID || !okFrom || !okTo {
			warnings = append(warnings, Warning{Row: rowNum, Message: "unparseable id column"})
			continue
		}
		date, ok := parseDate(t.cell(row, "transfer_date"))
		if !ok {
			warnings = append(warnings, Warning{Row: rowNum, Message: "unparseable transfer_date"})
			continue
		}

		dto := transferRowDTO{
			PlayerID:       playerID,
			PlayerName:     t.cell(row, "player_name"),
			TransferSeason: t.cell(row, "transfer_season"),
			FromClubID:     fromClubID,
			ToClubID:       toClubID,
		}
		if err := d.validate.StructCtx(ctx, dto); err != nil {
			warnings = append(warnings, Warning{Row: rowNum, Message: fmt.Sprintf("validation failed: %v", err)})
			continue
		}

		fee, okFee := parseFloatPtr(t.cell(row, "transfer_fee"))
		if !okFee {
			warnings = append(warnings, Warning{Row: rowNum, Message: "unparseable transfer_fee, kept as null"})
		}
		marketValue, okMV := parseFloatPtr(t.cell(row, "market_value_in_eur"))
		if !okMV {
			warnings = append(warnings, Warning{Row: rowNum, Message: "unparseable market_value_in_eur, kept as null"})
		}

		records = append(records, transfer.Record{
			PlayerID:       dto.PlayerID,
			PlayerName:     dto.PlayerName,
			TransferDate:   date,
			TransferSeason: dto.TransferSeason,
			FromClubID:     dto.FromClubID,
			ToClubID:       dto.ToClubID,
			FromClubName:   t.cell(row, "from_club_name"),
			ToClubName:     t.cell(row, "to_club_name"),
			TransferFee:    fee,
			MarketValueEUR: marketValue,
		})
	}

	return records, warnings, nil
}

type clubRowDTO struct {
	ClubID                int64  `validate:"required,gt=0"`
	Name                  string `validate:"required"`
	DomesticCompetitionID string `validate:"required"`
}

// Clubs decodes the transfer-source club snapshot.
func (d *Decoder) Clubs(ctx context.Context, r io.Reader) ([]transfer.Club, []Warning, error) {
	t, warnings, err := readTable(r)
	if err != nil {
		return nil, nil, err
	}

	clubs := make([]transfer.Club, 0, len(t.rows))
	for i, row := range t.rows {
		rowNum := i + 2

		clubID, ok := parseInt64(t.cell(row, "club_id"))
		if !ok {
			warnings = append(warnings, Warning{Row: rowNum, Message: "unparseable club_id"})
			continue
		}
		dto := clubRowDTO{
			ClubID:                clubID,
			Name:                  t.cell(row, "name"),
			DomesticCompetitionID: t.cell(row, "domestic_competition_id"),
		}
		if err := d.validate.StructCtx(ctx, dto); err != nil {
			warnings = append(warnings, Warning{Row: rowNum, Message: fmt.Sprintf("validation failed: %v", err)})
			continue
		}

		squadSize, _ := parseIntPtr(t.cell(row, "squad_size"))
		averageAge, _ := parseFloatPtr(t.cell(row, "average_age"))
		foreigners, _ := parseIntPtr(t.cell(row, "foreigners_number"))
		natPlayers, _ := parseIntPtr(t.cell(row, "national_team_players"))
		stadiumSeats, _ := parseIntPtr(t.cell(row, "stadium_seats"))
		lastSeason, _ := parseIntPtr(t.cell(row, "last_season"))

		clubs = append(clubs, transfer.Club{
			ClubID:                dto.ClubID,
			ClubCode:              t.cell(row, "club_code"),
			Name:                  dto.Name,
			DomesticCompetitionID: dto.DomesticCompetitionID,
			SquadSize:             squadSize,
			AverageAge:            averageAge,
			ForeignersNumber:      foreigners,
			NationalTeamPlayers:   natPlayers,
			StadiumName:           t.cell(row, "stadium_name"),
			StadiumSeats:          stadiumSeats,
			LastSeason:            lastSeason,
		})
	}

	return clubs, warnings, nil
}

func transferRow(r transfer.Record) []string {
	return []string{
		fmt.Sprintf("%d", r.PlayerID),
		formatDate(r.TransferDate),
		r.TransferSeason,
		fmt.Sprintf("%d", r.FromClubID),
		fmt.Sprintf("%d", r.ToClubID),
		r.FromClubName,
		r.ToClubName,
		formatFloatPtr(r.TransferFee),
		formatFloatPtr(r.MarketValueEUR),
		r.PlayerName,
	}
}

// WriteSelectedTransfers writes the relevant-transfers artifact with the
// input snapshot's column layout.
func WriteSelectedTransfers(path string, records []transfer.Record) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, transferRow(r))
	}
	return writeCSVFile(path, transferColumns, rows)
}

var mappedTransferColumns = append(append([]string(nil), transferColumns...),
	"player_name_mapped", "from_club_name_mapped", "to_club_name_mapped",
	"from_club_domestic_competition_id", "to_club_domestic_competition_id",
)

// WriteMappedTransfers writes selected transfers joined to the stats
// source's naming world.
func WriteMappedTransfers(path string, transfers []transfer.Mapped) error {
	rows := make([][]string, 0, len(transfers))
	for _, m := range transfers {
		row := transferRow(m.Record)
		row = append(row,
			m.PlayerNameMapped,
			m.FromClubNameMapped,
			m.ToClubNameMapped,
			m.FromCompetitionID,
			m.ToCompetitionID,
		)
		rows = append(rows, row)
	}
	return writeCSVFile(path, mappedTransferColumns, rows)
}
