package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/strikerlab/debutform/internal/domain/transfer"
)

// TransferRepository keeps transfer rows in snapshot order. The transfer
// selector's first-wins dedup reads them back in the order they arrived.
type TransferRepository struct {
	mu      sync.RWMutex
	order   []string
	records map[string]transfer.Record
	mapped  []transfer.Mapped
}

func NewTransferRepository() *TransferRepository {
	return &TransferRepository{records: make(map[string]transfer.Record)}
}

func recordKey(r transfer.Record) string {
	return fmt.Sprintf("%d|%s|%d|%d", r.PlayerID, r.TransferDate.Format("2006-01-02"), r.FromClubID, r.ToClubID)
}

func (r *TransferRepository) UpsertRecords(_ context.Context, records []transfer.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range records {
		key := recordKey(item)
		if _, ok := r.records[key]; !ok {
			r.order = append(r.order, key)
		}
		r.records[key] = item
	}

	return nil
}

func (r *TransferRepository) ListRecords(_ context.Context) ([]transfer.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]transfer.Record, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.records[key])
	}

	return out, nil
}

func (r *TransferRepository) ReplaceMapped(_ context.Context, transfers []transfer.Mapped) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.mapped = append([]transfer.Mapped(nil), transfers...)
	return nil
}

func (r *TransferRepository) ListMapped(_ context.Context) ([]transfer.Mapped, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]transfer.Mapped, 0, len(r.mapped))
	out = append(out, r.mapped...)

	return out, nil
}

type ClubRepository struct {
	mu    sync.RWMutex
	clubs map[int64]transfer.Club
}

func NewClubRepository() *ClubRepository {
	return &ClubRepository{clubs: make(map[int64]transfer.Club)}
}

func (r *ClubRepository) UpsertClubs(_ context.Context, clubs []transfer.Club) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, club := range clubs {
		r.clubs[club.ClubID] = club
	}

	return nil
}

func (r *ClubRepository) ListClubs(_ context.Context) ([]transfer.Club, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]transfer.Club, 0, len(r.clubs))
	for _, club := range r.clubs {
		out = append(out, club)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClubID < out[j].ClubID })

	return out, nil
}
