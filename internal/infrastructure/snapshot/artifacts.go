package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/strikerlab/debutform/internal/domain/clubname"
	"github.com/strikerlab/debutform/internal/domain/dataset"
	"github.com/strikerlab/debutform/internal/domain/transfer"
)

var teamNameColumns = []string{"team_name", "league_name", "normalized_team_name"}

// WriteTeamNames writes the team directory artifact.
func WriteTeamNames(path string, teams []clubname.TeamName) error {
	rows := make([][]string, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, []string{t.TeamName, t.LeagueName, t.NormalizedTeamName})
	}
	return writeCSVFile(path, teamNameColumns, rows)
}

// ReadTeamNames loads a previously written team directory.
func (d *Decoder) ReadTeamNames(path string) ([]clubname.TeamName, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, crerr.Wrap(err, "open team names artifact")
	}
	defer f.Close()

	t, _, err := readTable(f)
	if err != nil {
		return nil, err
	}

	teams := make([]clubname.TeamName, 0, len(t.rows))
	for _, row := range t.rows {
		team := clubname.TeamName{
			TeamName:           t.cell(row, "team_name"),
			LeagueName:         t.cell(row, "league_name"),
			NormalizedTeamName: t.cell(row, "normalized_team_name"),
		}
		if team.TeamName == "" {
			continue
		}
		if team.NormalizedTeamName == "" {
			team.NormalizedTeamName = clubname.Normalize(team.TeamName)
		}
		team.IsTopFive = clubname.IsTopFiveLeague(team.LeagueName)
		teams = append(teams, team)
	}

	return teams, nil
}

var uniqueClubColumns = []string{
	"club_name_transfermarkt", "club_name_fbref",
	"club_domestic_competition_id", "league_name",
}

// WriteUniqueClubs writes the cross-provider club name pairs.
func WriteUniqueClubs(path string, clubs []clubname.UniqueClub) error {
	rows := make([][]string, 0, len(clubs))
	for _, c := range clubs {
		rows = append(rows, []string{
			c.ClubNameTransfermarkt, c.ClubNameFBref, c.CompetitionID, c.LeagueName,
		})
	}
	return writeCSVFile(path, uniqueClubColumns, rows)
}

var scrapeTargetColumns = []string{
	"transfer_id", "player_id", "player_name", "player_name_mapped", "transfer_date",
	"from_club_name", "from_club_name_mapped", "to_club_name", "to_club_name_mapped",
	"from_club_domestic_competition_id", "from_league_name",
	"to_club_domestic_competition_id", "to_league_name",
}

// WriteScrapeTargets writes the listing the out-of-league history scraper
// consumes.
func WriteScrapeTargets(path string, targets []transfer.ScrapeTarget) error {
	rows := make([][]string, 0, len(targets))
	for _, s := range targets {
		rows = append(rows, []string{
			s.TransferID,
			fmt.Sprintf("%d", s.PlayerID),
			s.PlayerName,
			s.PlayerNameMapped,
			formatDate(s.TransferDate),
			s.FromClubName,
			s.FromClubNameMapped,
			s.ToClubName,
			s.ToClubNameMapped,
			s.FromCompetitionID,
			s.FromLeagueName,
			s.ToCompetitionID,
			s.ToLeagueName,
		})
	}
	return writeCSVFile(path, scrapeTargetColumns, rows)
}

var sampleColumns = []string{
	"player_match_id", "player_id", "player_name", "split", "match_date",
	"team", "opponent", "venue", "league", "season", "scored",
	"window_size", "window_complete",
	"minutes_mean", "goals_mean", "goals_sum", "scored_rate",
	"shots_mean", "shots_on_target_mean", "xg_mean", "npxg_mean",
	"assists_mean", "sca_mean", "gca_mean",
	"transfer_id", "transfer_date", "match_number_after_transfer", "days_since_transfer",
	"team_elo", "opponent_elo", "elo_diff",
}

// WriteSamples writes a feature-enriched split. Transfer annotation
// columns stay empty on train rows.
func WriteSamples(path string, samples []dataset.Sample) error {
	rows := make([][]string, 0, len(samples))
	for _, s := range samples {
		matchNumber, daysSince := "", ""
		if s.Split == dataset.SplitTest {
			matchNumber = strconv.Itoa(s.MatchNumberAfterTransfer)
			daysSince = strconv.Itoa(s.DaysSinceTransfer)
		}
		rows = append(rows, []string{
			s.PlayerMatchID,
			s.PlayerID,
			s.PlayerName,
			string(s.Split),
			formatDate(s.MatchDate),
			s.Team,
			s.Opponent,
			s.Venue,
			s.League,
			s.Season,
			formatBoolPtr(s.Scored),
			strconv.Itoa(s.WindowSize),
			strconv.FormatBool(s.WindowComplete),
			formatFloat(s.Features.MinutesMean),
			formatFloat(s.Features.GoalsMean),
			strconv.Itoa(s.Features.GoalsSum),
			formatFloat(s.Features.ScoredRate),
			formatFloat(s.Features.ShotsMean),
			formatFloat(s.Features.ShotsOnTargetMean),
			formatFloat(s.Features.XGMean),
			formatFloat(s.Features.NPXGMean),
			formatFloat(s.Features.AssistsMean),
			formatFloat(s.Features.SCAMean),
			formatFloat(s.Features.GCAMean),
			s.TransferID,
			formatDatePtr(s.TransferDate),
			matchNumber,
			daysSince,
			formatFloatPtr(s.TeamElo),
			formatFloatPtr(s.OpponentElo),
			formatFloatPtr(s.EloDiff),
		})
	}
	return writeCSVFile(path, sampleColumns, rows)
}

// WriteRunManifest writes the run record as indented JSON next to the
// stage artifacts.
func WriteRunManifest(path string, run dataset.Run) error {
	out, err := sonic.MarshalIndent(run, "", "  ")
	if err != nil {
		return crerr.Wrap(err, "marshal run manifest")
	}
	out = append(out, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return crerr.Wrap(err, "create manifest dir")
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return crerr.Wrap(err, "write run manifest")
	}

	return nil
}
