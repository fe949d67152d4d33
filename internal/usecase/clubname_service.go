package usecase

import (
	"context"
	"sort"

	"github.com/strikerlab/debutform/internal/domain/clubname"
	"github.com/strikerlab/debutform/internal/domain/dataset"
	"github.com/strikerlab/debutform/internal/domain/matchlog"
	"github.com/strikerlab/debutform/internal/domain/transfer"
)

type TeamNamesInput struct {
	Targets      []transfer.ScrapeTarget
	TrainEntries []matchlog.Entry
	TestRows     []TestSetRow
}

type TeamNamesResult struct {
	Teams  []clubname.TeamName
	Report dataset.BuildReport
}

type UniqueClubsResult struct {
	Clubs  []clubname.UniqueClub
	Report dataset.BuildReport
}

// ClubNameService maintains the team directory: every (team, league) pair
// the pipeline has seen, under the stats source's spelling. Rating fetches
// key on the directory's normalized names.
type ClubNameService struct{}

func NewClubNameService() *ClubNameService {
	return &ClubNameService{}
}

// TeamNames collects team names from the scrape listing's from- and
// to-clubs and from the train and test logs' team columns. League names are
// canonicalized before de-duplication, so EPL and PremierLeague rows merge.
// The listing sorts top-5-league teams first, then by league, then by team.
func (s *ClubNameService) TeamNames(ctx context.Context, input TeamNamesInput) (TeamNamesResult, error) {
	_, span := startUsecaseSpan(ctx, "usecase.ClubNameService.TeamNames")
	defer span.End()

	sourceRows := 0
	seen := make(map[string]struct{})
	var teams []clubname.TeamName
	add := func(team, league string) {
		sourceRows++
		if team == "" {
			return
		}
		league = clubname.CanonicalLeague(league)
		key := team + "\x00" + league
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		teams = append(teams, clubname.TeamName{
			TeamName:           team,
			LeagueName:         league,
			NormalizedTeamName: clubname.Normalize(team),
			IsTopFive:          clubname.IsTopFiveLeague(league),
		})
	}

	for _, target := range input.Targets {
		add(target.FromClubNameMapped, target.FromLeagueName)
		add(target.ToClubNameMapped, target.ToLeagueName)
	}
	for _, entry := range input.TrainEntries {
		add(entry.Team, entry.League)
	}
	for _, row := range input.TestRows {
		add(row.Entry.Team, row.Entry.League)
	}

	sort.SliceStable(teams, func(i, j int) bool {
		if teams[i].IsTopFive != teams[j].IsTopFive {
			return teams[i].IsTopFive
		}
		if teams[i].LeagueName != teams[j].LeagueName {
			return teams[i].LeagueName < teams[j].LeagueName
		}
		return teams[i].TeamName < teams[j].TeamName
	})

	return TeamNamesResult{
		Teams: teams,
		Report: dataset.BuildReport{
			Stage:   "team-names",
			RowsIn:  sourceRows,
			RowsOut: len(teams),
		},
	}, nil
}

// UniqueClubs lists the distinct club spellings across both naming worlds,
// taken from the scrape listing's from- and to-sides.
func (s *ClubNameService) UniqueClubs(ctx context.Context, targets []transfer.ScrapeTarget) (UniqueClubsResult, error) {
	_, span := startUsecaseSpan(ctx, "usecase.ClubNameService.UniqueClubs")
	defer span.End()

	seen := make(map[string]struct{})
	var clubs []clubname.UniqueClub
	add := func(club clubname.UniqueClub) {
		if club.ClubNameTransfermarkt == "" && club.ClubNameFBref == "" {
			return
		}
		key := club.ClubNameTransfermarkt + "\x00" + club.ClubNameFBref + "\x00" + club.CompetitionID + "\x00" + club.LeagueName
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		clubs = append(clubs, club)
	}

	for _, target := range targets {
		add(clubname.UniqueClub{
			ClubNameTransfermarkt: target.FromClubName,
			ClubNameFBref:         target.FromClubNameMapped,
			CompetitionID:         target.FromCompetitionID,
			LeagueName:            target.FromLeagueName,
		})
		add(clubname.UniqueClub{
			ClubNameTransfermarkt: target.ToClubName,
			ClubNameFBref:         target.ToClubNameMapped,
			CompetitionID:         target.ToCompetitionID,
			LeagueName:            target.ToLeagueName,
		})
	}

	sort.SliceStable(clubs, func(i, j int) bool {
		if clubs[i].ClubNameTransfermarkt != clubs[j].ClubNameTransfermarkt {
			return clubs[i].ClubNameTransfermarkt < clubs[j].ClubNameTransfermarkt
		}
		return clubs[i].ClubNameFBref < clubs[j].ClubNameFBref
	})

	return UniqueClubsResult{
		Clubs: clubs,
		Report: dataset.BuildReport{
			Stage:   "unique-clubs",
			RowsIn:  len(targets) * 2,
			RowsOut: len(clubs),
		},
	}, nil
}
