package snapshot

import (
	"os"
	"path/filepath"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/strikerlab/debutform/internal/domain/clubname"
)

const (
	clubMappingFile       = "clubs.json"
	playerMappingFile     = "players.json"
	clubCompetitionFile   = "club_name_to_competition_id.json"
	competitionLeagueFile = "competition_id_to_league_name.json"
)

// LoadMapping reads the name-mapping JSON files from dir. A missing file
// degrades to the identity mapping for its concern.
func LoadMapping(dir string) (clubname.Mapping, error) {
	mapping := clubname.Mapping{
		Clubs:                  map[string]string{},
		Players:                map[string]string{},
		ClubCompetitionIDs:     map[string]string{},
		CompetitionLeagueNames: map[string]string{},
	}

	files := []struct {
		name string
		into *map[string]string
	}{
		{clubMappingFile, &mapping.Clubs},
		{playerMappingFile, &mapping.Players},
		{clubCompetitionFile, &mapping.ClubCompetitionIDs},
		{competitionLeagueFile, &mapping.CompetitionLeagueNames},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return clubname.Mapping{}, crerr.Wrapf(err, "read mapping file %s", f.name)
		}
		if err := sonic.Unmarshal(raw, f.into); err != nil {
			return clubname.Mapping{}, crerr.Wrapf(err, "decode mapping file %s", f.name)
		}
	}

	return mapping, nil
}
