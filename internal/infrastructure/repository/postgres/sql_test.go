package postgres

import (
	"database/sql"
	"fmt"
	"testing"
	"time"
)

func TestBindErrorDetectors(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		mismatch bool
		missing  bool
	}{
		{
			name:     "bind parameter mismatch",
			err:      fakeErr(`pq: bind message supplies 2 parameters, but prepared statement "" requires 1 (08P01)`),
			mismatch: true,
		},
		{
			name:    "unnamed statement by message",
			err:     fakeErr("pq: unnamed prepared statement does not exist (26000)"),
			missing: true,
		},
		{
			name:    "unnamed statement by code",
			err:     fakeErr("pq: prepared statement missing (26000)"),
			missing: true,
		},
		{
			name: "unrelated error",
			err:  fakeErr("pq: relation formatted_elos does not exist"),
		},
		{
			name: "nil error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isBindParameterMismatch(tc.err); got != tc.mismatch {
				t.Fatalf("isBindParameterMismatch = %v, want %v", got, tc.mismatch)
			}
			if got := isUnnamedPreparedStatementMissing(tc.err); got != tc.missing {
				t.Fatalf("isUnnamedPreparedStatementMissing = %v, want %v", got, tc.missing)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatalf("expected direct ErrNoRows to match")
	}
	if !isNotFound(fmt.Errorf("load run: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to match")
	}
	if isNotFound(fakeErr("boom")) {
		t.Fatalf("expected unrelated error not to match")
	}
}

func TestNullHelpers(t *testing.T) {
	t.Run("null float stays nil", func(t *testing.T) {
		if got := nullFloat64ToPtr(sql.NullFloat64{}); got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
	})

	t.Run("valid float round trips", func(t *testing.T) {
		got := nullFloat64ToPtr(sql.NullFloat64{Float64: 0.8, Valid: true})
		if got == nil || *got != 0.8 {
			t.Fatalf("expected 0.8, got %v", got)
		}
	})

	t.Run("valid int narrows to int", func(t *testing.T) {
		got := nullInt64ToIntPtr(sql.NullInt64{Int64: 90, Valid: true})
		if got == nil || *got != 90 {
			t.Fatalf("expected 90, got %v", got)
		}
	})

	t.Run("null time stays nil", func(t *testing.T) {
		if got := nullTimeToPtr(sql.NullTime{}); got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
	})

	t.Run("valid time round trips", func(t *testing.T) {
		at := time.Date(2024, 8, 7, 0, 0, 0, 0, time.UTC)
		got := nullTimeToPtr(sql.NullTime{Time: at, Valid: true})
		if got == nil || !got.Equal(at) {
			t.Fatalf("expected %v, got %v", at, got)
		}
	})

	t.Run("nil int pointer maps to null", func(t *testing.T) {
		if got := intPtrToNullable(nil); got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
	})
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
