package storage

import (
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/rs/zerolog/log"
)

// gcDiscardRatio is the share of a value log file that must be stale before
// BadgerDB rewrites it.
const gcDiscardRatio = 0.5

// BadgerDB is a KeyValue backed by an embedded BadgerDB directory. Every key
// it writes expires after the configured TTL.
type BadgerDB struct {
	db  *badger.DB
	ttl time.Duration
}

// badgerLogger sends BadgerDB's own logs to zerolog. BadgerDB is chatty at
// the info level, so those become debug logs.
type badgerLogger struct{}

func (badgerLogger) Errorf(f string, v ...interface{})   { log.Error().Msgf(f, v...) }
func (badgerLogger) Warningf(f string, v ...interface{}) { log.Warn().Msgf(f, v...) }
func (badgerLogger) Infof(f string, v ...interface{})    { log.Debug().Msgf(f, v...) }
func (badgerLogger) Debugf(f string, v ...interface{})   { log.Debug().Msgf(f, v...) }

// NewBadgerDB opens (or creates) the send history in conf.StorageDirPath.
// Only one process can hold the directory at a time. Close it when done.
func NewBadgerDB(conf *KVConfig) (*BadgerDB, error) {
	opts := badger.DefaultOptions(conf.StorageDirPath).WithLogger(badgerLogger{})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("can't open the history at %v: %w", conf.StorageDirPath, err)
	}

	return &BadgerDB{
		db:  db,
		ttl: conf.KeyTTLDuration,
	}, nil
}

// Put writes entry, replacing any value already stored under its key.
func (b *BadgerDB) Put(entry KVEntry) error {
	return b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(entry.Key, entry.Value)
		if b.ttl > 0 {
			e = e.WithTTL(b.ttl)
		}
		if err := txn.SetEntry(e); err != nil {
			return fmt.Errorf("can't write %q: %w", entry.Key, err)
		}
		return nil
	})
}

// Read returns the entry stored under key. A missing or expired key wraps
// badger.ErrKeyNotFound.
func (b *BadgerDB) Read(key []byte) (KVEntry, error) {
	entry := KVEntry{Key: key}
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return fmt.Errorf("can't read %q: %w", key, err)
		}

		// Values are only valid inside the transaction
		entry.Value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return KVEntry{}, err
	}
	return entry, nil
}

// Scan returns every unexpired entry whose key starts with prefix, in key
// order.
func (b *BadgerDB) Scan(prefix []byte) ([]KVEntry, error) {
	var entries []KVEntry
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			v, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("can't read %q: %w", item.Key(), err)
			}
			entries = append(entries, KVEntry{
				Key:   item.KeyCopy(nil),
				Value: v,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Cleanup runs one pass of value log garbage collection, which is what
// actually reclaims the space held by expired records. Having nothing to
// collect isn't an error.
//
// See: https://pkg.go.dev/github.com/dgraph-io/badger/v3#DB.RunValueLogGC
func (b *BadgerDB) Cleanup() error {
	err := b.db.RunValueLogGC(gcDiscardRatio)
	if errors.Is(err, badger.ErrNoRewrite) {
		return nil
	}
	return err
}

// Close flushes pending writes and releases the directory.
func (b *BadgerDB) Close() error {
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("can't close the history: %w", err)
	}
	return nil
}
