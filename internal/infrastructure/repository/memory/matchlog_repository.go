package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/strikerlab/debutform/internal/domain/matchlog"
)

type MatchLogRepository struct {
	mu           sync.RWMutex
	order        []string
	entries      map[string]matchlog.Entry
	postTransfer []matchlog.PostTransferEntry
}

func NewMatchLogRepository() *MatchLogRepository {
	return &MatchLogRepository{entries: make(map[string]matchlog.Entry)}
}

func entryKey(e matchlog.Entry) string {
	return e.PlayerMatchID() + "|" + e.StatType
}

func (r *MatchLogRepository) UpsertEntries(_ context.Context, entries []matchlog.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range entries {
		key := entryKey(entry)
		if _, ok := r.entries[key]; !ok {
			r.order = append(r.order, key)
		}
		r.entries[key] = entry
	}

	return nil
}

func (r *MatchLogRepository) ListEntries(_ context.Context) ([]matchlog.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.listLocked(func(matchlog.Entry) bool { return true }), nil
}

func (r *MatchLogRepository) ListByPlayer(_ context.Context, playerID string) ([]matchlog.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.listLocked(func(e matchlog.Entry) bool { return e.PlayerID == playerID }), nil
}

func (r *MatchLogRepository) ListByPlayerBefore(_ context.Context, playerID string, before time.Time) ([]matchlog.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.listLocked(func(e matchlog.Entry) bool {
		return e.PlayerID == playerID && e.Date.Before(before)
	}), nil
}

func (r *MatchLogRepository) listLocked(keep func(matchlog.Entry) bool) []matchlog.Entry {
	out := make([]matchlog.Entry, 0, len(r.order))
	for _, key := range r.order {
		entry := r.entries[key]
		if keep(entry) {
			out = append(out, entry)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].PlayerID < out[j].PlayerID
	})

	return out
}

func (r *MatchLogRepository) ReplacePostTransfer(_ context.Context, entries []matchlog.PostTransferEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.postTransfer = append([]matchlog.PostTransferEntry(nil), entries...)
	return nil
}

func (r *MatchLogRepository) ListPostTransfer(_ context.Context) ([]matchlog.PostTransferEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]matchlog.PostTransferEntry, 0, len(r.postTransfer))
	out = append(out, r.postTransfer...)

	return out, nil
}
