// Package archive persists the IDs of entries the bot has already posted so
// repeated runs do not repost them.
package archive

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Store is a Badger-backed record of posted entry IDs.
type Store struct {
	db        *badger.DB
	retention time.Duration
}

// Open opens (or creates) the archive under dir. Entries expire after
// retention; zero disables expiry.
func Open(dir string, retention time.Duration) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", dir, err)
	}
	return &Store{db: db, retention: retention}, nil
}

func key(id string) []byte { return []byte("posted:" + id) }

// Seen reports whether id has already been posted.
func (s *Store) Seen(id string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key(id))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkPosted records id with the post timestamp as its value.
func (s *Store) MarkPosted(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key(id), []byte(time.Now().UTC().Format(time.RFC3339)))
		if s.retention > 0 {
			e = e.WithTTL(s.retention)
		}
		return txn.SetEntry(e)
	})
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
