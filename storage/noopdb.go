package storage

import "errors"

// ErrNoOp is returned by NoOpDB reads and writes.
var ErrNoOp = errors.New("storage is disabled")

// NoOpDB stands in for a KeyValue when the user hasn't configured a storage
// directory. Reads and writes fail with ErrNoOp so nobody mistakes them for
// real ones. Cleanup and Close succeed since there's nothing to do.
type NoOpDB struct{}

func (n *NoOpDB) Put(KVEntry) error {
	return ErrNoOp
}

func (n *NoOpDB) Read([]byte) (KVEntry, error) {
	return KVEntry{}, ErrNoOp
}

func (n *NoOpDB) Scan([]byte) ([]KVEntry, error) {
	return nil, ErrNoOp
}

func (n *NoOpDB) Cleanup() error {
	return nil
}

func (n *NoOpDB) Close() error {
	return nil
}
