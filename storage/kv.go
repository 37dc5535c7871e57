package storage

import (
	"errors"
	"fmt"
	"time"
)

// KVConfig contains settings specific to BadgerDB connections
type KVConfig struct {
	// An empty path disables storage
	StorageDirPath string
	KeyTTLDuration time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface. Validation is
// performed here.
func (c *KVConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	v := make(map[string]string)
	err := unmarshal(&v)

	if err != nil {
		return fmt.Errorf("can't parse the storage config: %v", err)
	}

	sp, ok := v["storageDir"]
	if !ok || sp == "" {
		return errors.New("the storage config must include a storageDir")
	}
	c.StorageDirPath = sp

	kt, ok := v["keyTTL"]
	if !ok {
		return errors.New("the storage config must include a keyTTL")
	}

	d, err := time.ParseDuration(kt)
	if err != nil {
		return fmt.Errorf("can't parse the keyTTL as a duration: %v", err)
	}
	if d <= 0 {
		return errors.New("the keyTTL must be positive")
	}
	c.KeyTTLDuration = d

	return nil
}

// KeyValue exposes a common interface for performing CRUD operations on an
// underlying storage layer.
//
// Implentations need to include connection logic in code to initialize
// a Store.
type KeyValue interface {
	// Replace the value of an entry or create a new one if it doesn't exist
	Put(KVEntry) error
	// Return an entry given its key
	Read(key []byte) (KVEntry, error)
	// Return all entries whose keys share a prefix
	Scan(prefix []byte) ([]KVEntry, error)
	// Cleanup performs routine deletion of old records. We assign
	// TTLs to KV pairs and delete them periodically.
	Cleanup() error
	// Drain/tear down the connection, or something analogous for
	// an embedded database
	Close() error
}

// KVEntry is what we'll write to and read from the KV store
type KVEntry struct {
	Key   []byte
	Value []byte
}

// Open returns a BadgerDB for conf, or a NoOpDB if conf doesn't include a
// storage directory. It is up to the caller to Close the KeyValue.
func Open(conf *KVConfig) (KeyValue, error) {
	if conf == nil || conf.StorageDirPath == "" {
		return &NoOpDB{}, nil
	}
	return NewBadgerDB(conf)
}
