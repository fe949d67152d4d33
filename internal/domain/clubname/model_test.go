package clubname

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Manchester Utd", "manchesterutd"},
		{"St. Pauli", "stpauli"},
		{"PSG", "psg"},
		{"Bayer 04 Leverkusen", "bayer04leverkusen"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalLeague(t *testing.T) {
	t.Parallel()

	if got := CanonicalLeague("EPL"); got != "PremierLeague" {
		t.Fatalf("expected EPL to canonicalize to PremierLeague, got %q", got)
	}
	if got := CanonicalLeague("SerieA"); got != "SerieA" {
		t.Fatalf("expected SerieA to pass through, got %q", got)
	}
}

func TestIsTopFiveLeague(t *testing.T) {
	t.Parallel()

	cases := []struct {
		league string
		want   bool
	}{
		{"PremierLeague", true},
		{"Premier League", true},
		{"SerieA (ITA)", true},
		{"la liga", true},
		{"Eredivisie", false},
		{"Championship", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsTopFiveLeague(tc.league); got != tc.want {
			t.Fatalf("IsTopFiveLeague(%q) = %v, want %v", tc.league, got, tc.want)
		}
	}
}

func TestEloLookupName(t *testing.T) {
	t.Parallel()

	if got := EloLookupName("Napoli"); got != "SSC Napoli" {
		t.Fatalf("expected Napoli alias, got %q", got)
	}
	if got := EloLookupName("Arsenal"); got != "Arsenal" {
		t.Fatalf("expected Arsenal to pass through, got %q", got)
	}
}

func TestMapping_FallsBackToIdentity(t *testing.T) {
	t.Parallel()

	m := Mapping{
		Clubs:   map[string]string{"Manchester United": "Manchester Utd"},
		Players: map[string]string{},
	}

	if got := m.ClubName("Manchester United"); got != "Manchester Utd" {
		t.Fatalf("unexpected mapped club name: %q", got)
	}
	if got := m.ClubName("AFC Sunderland"); got != "AFC Sunderland" {
		t.Fatalf("expected identity fallback, got %q", got)
	}
	if got := m.PlayerName("Erling Haaland"); got != "Erling Haaland" {
		t.Fatalf("expected identity fallback for player, got %q", got)
	}
}
