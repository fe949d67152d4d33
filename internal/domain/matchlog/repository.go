package matchlog

import (
	"context"
	"time"
)

// Repository describes match-log persistence needs from use cases.
// List results are ordered by date, then player id.
type Repository interface {
	UpsertEntries(ctx context.Context, entries []Entry) error
	ListEntries(ctx context.Context) ([]Entry, error)
	ListByPlayer(ctx context.Context, playerID string) ([]Entry, error)
	ListByPlayerBefore(ctx context.Context, playerID string, before time.Time) ([]Entry, error)
	ReplacePostTransfer(ctx context.Context, entries []PostTransferEntry) error
	ListPostTransfer(ctx context.Context) ([]PostTransferEntry, error)
}
