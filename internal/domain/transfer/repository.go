package transfer

import "context"

// Repository describes transfer persistence needs from use cases.
type Repository interface {
	UpsertRecords(ctx context.Context, records []Record) error
	ListRecords(ctx context.Context) ([]Record, error)
	ReplaceMapped(ctx context.Context, transfers []Mapped) error
	ListMapped(ctx context.Context) ([]Mapped, error)
}

// ClubRepository describes club snapshot persistence.
type ClubRepository interface {
	UpsertClubs(ctx context.Context, clubs []Club) error
	ListClubs(ctx context.Context) ([]Club, error)
}
