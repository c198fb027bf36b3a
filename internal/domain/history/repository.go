package history

import "context"

// Repository defines the persistence contract for route history.
type Repository interface {
	// Save persists a new record.
	Save(ctx context.Context, record *Record) error

	// List returns records newest first with pagination, plus the total count.
	List(ctx context.Context, page, limit int) ([]*Record, int64, error)

	// CountByMode returns record counts grouped by travel mode.
	CountByMode(ctx context.Context) (map[string]int64, error)
}
