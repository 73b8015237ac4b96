package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"webcrawl/pkg/log"
	"webcrawl/pkg/utils"
)

const (
	urlKeyPrefix = "url:"
	visitedDBDir = "visited_db"
)

// BadgerStore is a persistent VisitedStore backed by BadgerDB. With
// resume enabled, URLs claimed by an earlier crawl of the same state
// directory stay claimed, so a restarted crawl skips them.
type BadgerStore struct {
	db       *badger.DB
	log      *logrus.Entry
	keyCount atomic.Int64 // cached so Count is O(1)
}

// NewBadgerStore opens (or recreates) the visited database under
// stateDir. The crawl label keeps databases of different crawl targets
// apart. When resume is false any existing state is removed first.
func NewBadgerStore(stateDir, crawlLabel string, resume bool, logger *logrus.Entry) (*BadgerStore, error) {
	dbPath := filepath.Join(stateDir, utils.SanitizeFilename(crawlLabel)+"_"+visitedDBDir)

	if !resume {
		if err := os.RemoveAll(dbPath); err != nil {
			logger.Errorf("Failed to remove existing state directory %s: %v", dbPath, err)
		}
	}
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("cannot create state directory %s: %w", dbPath, err)
	}
	logger.Infof("Opening visited URL database at %s (resume: %v)", dbPath, resume)

	opts := badger.DefaultOptions(dbPath).
		WithLogger(log.NewBadgerLogrusAdapter(logger.WithField("component", "badgerdb"))).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: opening badger database at %s: %w", utils.ErrDatabase, dbPath, err)
	}

	store := &BadgerStore{db: db, log: logger}
	if resume {
		count, countErr := store.countKeys()
		if countErr != nil {
			logger.Warnf("Failed to count existing keys on resume: %v", countErr)
		} else {
			store.keyCount.Store(int64(count))
			logger.Infof("Resuming with %d previously claimed URLs", count)
		}
	}
	return store, nil
}

func (s *BadgerStore) countKeys() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte(urlKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

const maxConflictRetries = 10

// dbUpdate retries badger.ErrConflict, which concurrent MVCC
// transactions on overlapping keys return and which resolves in
// microseconds.
func (s *BadgerStore) dbUpdate(fn func(txn *badger.Txn) error) error {
	for i := 0; i < maxConflictRetries; i++ {
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.log.Debugf("BadgerDB transaction conflict (attempt %d/%d), retrying", i+1, maxConflictRetries)
	}
	return fmt.Errorf("%w: transaction conflict not resolved after %d retries", utils.ErrDatabase, maxConflictRetries)
}

// MarkVisited implements VisitedStore.
func (s *BadgerStore) MarkVisited(normalizedURL string) (bool, error) {
	key := []byte(urlKeyPrefix + normalizedURL)
	added := false

	err := s.dbUpdate(func(txn *badger.Txn) error {
		_, errGet := txn.Get(key)
		if errors.Is(errGet, badger.ErrKeyNotFound) {
			if errSet := txn.SetEntry(badger.NewEntry(key, []byte{})); errSet != nil {
				return errSet
			}
			added = true
			return nil
		}
		return errGet
	})
	if err != nil {
		return false, fmt.Errorf("%w: marking key '%s': %w", utils.ErrDatabase, string(key), err)
	}
	if added {
		s.keyCount.Add(1)
	}
	return added, nil
}

// Seen implements VisitedStore.
func (s *BadgerStore) Seen(normalizedURL string) (bool, error) {
	key := []byte(urlKeyPrefix + normalizedURL)
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		_, errGet := txn.Get(key)
		if errors.Is(errGet, badger.ErrKeyNotFound) {
			return nil
		}
		if errGet != nil {
			return errGet
		}
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: reading key '%s': %w", utils.ErrDatabase, string(key), err)
	}
	return found, nil
}

// Count implements VisitedStore.
func (s *BadgerStore) Count() (int, error) {
	return int(s.keyCount.Load()), nil
}

// Close implements VisitedStore.
func (s *BadgerStore) Close() error {
	if s.db == nil || s.db.IsClosed() {
		return nil
	}
	s.log.Debug("Closing visited URL database")
	return s.db.Close()
}
