package badger

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/storage"
)

// InteractionRepository implements storage.InteractionRepository for BadgerDB.
type InteractionRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.InteractionRepository = (*InteractionRepository)(nil)

// NewInteractionRepository creates a new InteractionRepository.
func NewInteractionRepository(backend *Backend) (*InteractionRepository, error) {
	idSeq, err := backend.GetSequence(interactionIDSeq)
	if err != nil {
		return nil, err
	}

	return &InteractionRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *InteractionRepository) Close() error {
	return r.idSeq.Release()
}

// AddInteractions stores interactions and indexes them by timestamp.
func (r *InteractionRepository) AddInteractions(ctx context.Context, interactions ...*core.Interaction) ([]*core.Interaction, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, interaction := range interactions {
			if interaction != nil && interaction.Timestamp.IsZero() {
				interaction.Timestamp = time.Now().UTC()
			}
			if err := core.ValidateInteraction(interaction); err != nil {
				return err
			}

			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			interaction.Id = core.ID(nextID)

			key := makeInteractionKey(interaction.Id)
			if err := tx.Set(key, storage.MarshalInteraction(interaction)); err != nil {
				return err
			}

			dateKey := makeInteractionDateKey(interaction.Timestamp, interaction.Id)
			if err := tx.Set(dateKey, storage.MarshalID(interaction.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return interactions, err
}

// GetInteraction retrieves a single interaction by ID.
func (r *InteractionRepository) GetInteraction(ctx context.Context, id core.ID) (*core.Interaction, error) {
	var result *core.Interaction
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readInteraction(tx, makeInteractionKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetRecentInteractions walks the date index backwards from the newest entry.
func (r *InteractionRepository) GetRecentInteractions(ctx context.Context, limit int) ([]*core.Interaction, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.Interaction
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek to the last possible key in the date index
		startKey := makePartialInteractionDateKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
		prefix := []byte(interactionDatePrefix)

		for iter.Seek(startKey); iter.Valid() && len(results) < limit; iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			interaction, err := r.followIndex(tx, iter.Item())
			if err != nil {
				return err
			}
			if interaction != nil {
				results = append(results, interaction)
			}
		}
		return nil
	}, false)

	return results, err
}

// GetInteractionsByDateRange retrieves interactions with start <= Timestamp < end.
func (r *InteractionRepository) GetInteractionsByDateRange(ctx context.Context, start, end time.Time) ([]*core.Interaction, error) {
	if end.Before(start) {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.Interaction
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialInteractionDateKey(start)
		endKey := makePartialInteractionDateKey(end)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if slices.Compare(key, endKey) >= 0 {
				break
			}

			interaction, err := r.followIndex(tx, iter.Item())
			if err != nil {
				return err
			}
			if interaction != nil {
				results = append(results, interaction)
			}
		}
		return nil
	}, false)

	return results, err
}

// followIndex resolves a date index item to the interaction it points at.
func (r *InteractionRepository) followIndex(tx *badger.Txn, item *badger.Item) (*core.Interaction, error) {
	var id core.ID
	if err := item.Value(func(val []byte) error {
		var err error
		id, err = storage.UnmarshalID(val)
		return err
	}); err != nil {
		return nil, err
	}
	return readInteraction(tx, makeInteractionKey(id))
}

// readInteraction returns nil, nil when key is absent.
func readInteraction(tx *badger.Txn, key []byte) (*core.Interaction, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var interaction *core.Interaction
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		interaction, unmarshalErr = storage.UnmarshalInteraction(val)
		return unmarshalErr
	})
	return interaction, err
}
