package clubname

import (
	"fmt"
	"strings"
)

// TopFiveLeagues is the canonical spelling the stats source uses for the
// five major European leagues.
var TopFiveLeagues = []string{"PremierLeague", "LaLiga", "Bundesliga", "SerieA", "Ligue1"}

// Normalize lowercases a club or league name and strips spaces and dots,
// the variation sources disagree on most.
func Normalize(name string) string {
	out := strings.ToLower(name)
	out = strings.ReplaceAll(out, " ", "")
	out = strings.ReplaceAll(out, ".", "")
	return out
}

// CanonicalLeague rewrites league spellings that drift between scrape
// batches onto the canonical form.
func CanonicalLeague(league string) string {
	if strings.TrimSpace(league) == "EPL" {
		return "PremierLeague"
	}
	return league
}

// IsTopFiveLeague reports whether a league name refers to one of the five
// major leagues. Matching is by normalized containment, so decorated forms
// like "SerieA (ITA)" still qualify.
func IsTopFiveLeague(league string) bool {
	normalized := Normalize(league)
	for _, top := range TopFiveLeagues {
		if strings.Contains(normalized, Normalize(top)) {
			return true
		}
	}
	return false
}

// eloLookupAliases maps stats-source team names to the spelling the team
// directory carries, for teams where the two disagree.
var eloLookupAliases = map[string]string{
	"Napoli": "SSC Napoli",
}

// EloLookupName resolves the directory spelling for a stats-source team name.
func EloLookupName(team string) string {
	if alias, ok := eloLookupAliases[team]; ok {
		return alias
	}
	return team
}

// TeamName is one row of the team directory: every (team, league) pair the
// pipeline has seen, with the normalized name rating fetches key on.
type TeamName struct {
	TeamName           string
	LeagueName         string
	NormalizedTeamName string
	IsTopFive          bool
}

func (t TeamName) Validate() error {
	if t.TeamName == "" {
		return fmt.Errorf("team name is required")
	}
	if t.NormalizedTeamName == "" {
		return fmt.Errorf("normalized team name is required")
	}

	return nil
}

// UniqueClub pairs one club's spelling in both providers' naming worlds.
type UniqueClub struct {
	ClubNameTransfermarkt string
	ClubNameFBref         string
	CompetitionID         string
	LeagueName            string
}

// Mapping bundles the JSON mapping files that translate transfer-source
// names into stats-source names. Lookups fall back to the input name so a
// missing file degrades to the identity mapping.
type Mapping struct {
	Clubs                  map[string]string
	Players                map[string]string
	ClubCompetitionIDs     map[string]string
	CompetitionLeagueNames map[string]string
}

func (m Mapping) ClubName(name string) string {
	if mapped, ok := m.Clubs[name]; ok && mapped != "" {
		return mapped
	}
	return name
}

func (m Mapping) PlayerName(name string) string {
	if mapped, ok := m.Players[name]; ok && mapped != "" {
		return mapped
	}
	return name
}

func (m Mapping) CompetitionID(clubName string) (string, bool) {
	id, ok := m.ClubCompetitionIDs[clubName]
	return id, ok && id != ""
}

func (m Mapping) LeagueName(competitionID string) (string, bool) {
	name, ok := m.CompetitionLeagueNames[competitionID]
	return name, ok && name != ""
}
