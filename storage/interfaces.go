package storage

import (
	"context"
	"time"

	"github.com/poiesic/faqmatch/core"
)

// Repository is the lifecycle shared by every repository.
type Repository interface {
	// Close releases resources held by the repository.
	Close() error
}

// EntryRepository persists the FAQ corpus in order.
type EntryRepository interface {
	Repository
	// ReplaceEntries atomically replaces the stored corpus with entries.
	// Corpus order is preserved: ListEntries returns entries in the order given here.
	ReplaceEntries(ctx context.Context, entries []core.FAQEntry) error

	// ListEntries returns all stored entries in corpus order.
	// Returns an empty slice if nothing has been stored.
	ListEntries(ctx context.Context) ([]core.FAQEntry, error)

	// CountEntries returns the number of stored entries.
	CountEntries(ctx context.Context) (int, error)
}

// InteractionRepository persists answered queries, indexed by time.
type InteractionRepository interface {
	Repository
	// AddInteractions stores one or more interactions.
	// IDs are generated from a sequence and written back to the records.
	// Returns the records with generated IDs populated.
	AddInteractions(ctx context.Context, interactions ...*core.Interaction) ([]*core.Interaction, error)

	// GetInteraction retrieves a single interaction by ID.
	// Returns ErrNotFound if the interaction doesn't exist.
	GetInteraction(ctx context.Context, id core.ID) (*core.Interaction, error)

	// GetRecentInteractions retrieves up to limit interactions, most recent first.
	GetRecentInteractions(ctx context.Context, limit int) ([]*core.Interaction, error)

	// GetInteractionsByDateRange retrieves interactions where start <= Timestamp < end,
	// ordered by timestamp.
	GetInteractionsByDateRange(ctx context.Context, start, end time.Time) ([]*core.Interaction, error)
}
