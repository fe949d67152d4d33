package dataset

import (
	"fmt"
	"time"
)

type Split string

const (
	SplitTrain Split = "train"
	SplitTest  Split = "test"
)

// Role distinguishes test-set rows: outcome rows are the labeled samples,
// history rows exist only to feed feature computation.
type Role string

const (
	RoleOutcome Role = "outcome"
	RoleHistory Role = "history"
)

// Features holds trailing-window aggregates. The same struct is produced
// for train and test rows; only the window anchor differs.
type Features struct {
	Matches           int
	MinutesMean       float64
	GoalsMean         float64
	GoalsSum          int
	ScoredRate        float64
	ShotsMean         float64
	ShotsOnTargetMean float64
	XGMean            float64
	NPXGMean          float64
	AssistsMean       float64
	SCAMean           float64
	GCAMean           float64
}

// Sample is one feature-enriched modeling row. Scored is nil when the
// source row had no goal count, so the row is flagged rather than labeled.
type Sample struct {
	PlayerMatchID string
	PlayerID      string
	PlayerName    string
	Split         Split
	MatchDate     time.Time
	Team          string
	Opponent      string
	Venue         string
	League        string
	Season        string

	Scored *bool

	Features       Features
	WindowSize     int
	WindowComplete bool

	TransferID               string
	TransferDate             *time.Time
	MatchNumberAfterTransfer int
	DaysSinceTransfer        int

	TeamElo     *float64
	OpponentElo *float64
	EloDiff     *float64
}

func (s Sample) Validate() error {
	if s.PlayerMatchID == "" {
		return fmt.Errorf("sample player match id is required")
	}
	if s.Split != SplitTrain && s.Split != SplitTest {
		return fmt.Errorf("invalid sample split: %s", s.Split)
	}
	if s.MatchDate.IsZero() {
		return fmt.Errorf("sample match date is required")
	}
	if s.Split == SplitTest && s.TransferID == "" {
		return fmt.Errorf("test sample transfer id is required")
	}

	return nil
}

type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is the manifest of one pipeline invocation: which stage ran over
// which inputs, and what it produced.
type Run struct {
	ID             string
	Stage          string
	Status         RunStatus
	StartedAt      time.Time
	CompletedAt    *time.Time
	InputChecksums map[string]string
	Counts         map[string]int
	Error          string
}

func (r Run) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("run id is required")
	}
	if r.Stage == "" {
		return fmt.Errorf("run stage is required")
	}
	switch r.Status {
	case RunStatusPending, RunStatusRunning, RunStatusCompleted, RunStatusFailed:
	default:
		return fmt.Errorf("invalid run status: %s", r.Status)
	}

	return nil
}

// Exclusion is one class of rows a stage dropped, with the count and a
// representative key for debugging.
type Exclusion struct {
	Reason string
	Key    string
	Count  int
}

// BuildReport summarizes one stage's pass over its input.
type BuildReport struct {
	Stage      string
	RowsIn     int
	RowsOut    int
	Exclusions []Exclusion
}

func (r *BuildReport) Exclude(reason, key string, count int) {
	if count <= 0 {
		return
	}
	for i := range r.Exclusions {
		if r.Exclusions[i].Reason == reason {
			r.Exclusions[i].Count += count
			if r.Exclusions[i].Key == "" {
				r.Exclusions[i].Key = key
			}
			return
		}
	}
	r.Exclusions = append(r.Exclusions, Exclusion{Reason: reason, Key: key, Count: count})
}

// ExcludedTotal sums rows dropped across all exclusion classes.
func (r BuildReport) ExcludedTotal() int {
	total := 0
	for _, e := range r.Exclusions {
		total += e.Count
	}
	return total
}
