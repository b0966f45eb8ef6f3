package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/storage"
)

// EntryRepository implements storage.EntryRepository for BadgerDB.
type EntryRepository struct {
	backend *Backend
}

var _ storage.EntryRepository = (*EntryRepository)(nil)

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(backend *Backend) *EntryRepository {
	return &EntryRepository{backend: backend}
}

// Close is a no-op; the backend owns the database handle.
func (r *EntryRepository) Close() error {
	return nil
}

// ReplaceEntries removes every stored entry and writes entries in order,
// all in one transaction.
func (r *EntryRepository) ReplaceEntries(ctx context.Context, entries []core.FAQEntry) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		// Collect existing keys first; deleting while iterating is not allowed
		var stale [][]byte
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			stale = append(stale, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		for _, key := range stale {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}

		for i := range entries {
			if err := tx.Set(makeEntryKey(i), storage.MarshalEntry(&entries[i])); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// ListEntries returns all stored entries in corpus order.
func (r *EntryRepository) ListEntries(ctx context.Context) ([]core.FAQEntry, error) {
	results := []core.FAQEntry{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.FAQEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, *entry)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// CountEntries returns the number of stored entries without decoding them.
func (r *EntryRepository) CountEntries(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}
