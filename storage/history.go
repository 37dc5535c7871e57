package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

const sendKeyPrefix = "send/"

// SendRecord describes one message the mail server accepted for a gateway
// address. It says nothing about whether the phone received it.
type SendRecord struct {
	ID      uuid.UUID `json:"id"`
	Address string    `json:"address"`
	Subject string    `json:"subject,omitempty"`
	SentAt  time.Time `json:"sentAt"`
}

// NewSendRecord returns a SendRecord with a fresh ID, timestamped now.
func NewSendRecord(address string, subject string) SendRecord {
	return SendRecord{
		ID:      uuid.New(),
		Address: address,
		Subject: subject,
		SentAt:  time.Now().UTC(),
	}
}

func sendKey(id uuid.UUID) []byte {
	return []byte(sendKeyPrefix + id.String())
}

// Key returns the key the record is stored under.
func (r SendRecord) Key() []byte {
	return sendKey(r.ID)
}

// NewKVEntry prepares the SendRecord to be saved in the KV database. Values
// are JSON so they stay readable with generic Badger tooling.
func (r SendRecord) NewKVEntry() (KVEntry, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return KVEntry{}, fmt.Errorf("can't serialize the send record: %v", err)
	}
	return KVEntry{
		Key:   r.Key(),
		Value: b,
	}, nil
}

// History records accepted sends in a KeyValue. Create one with NewHistory.
type History struct {
	db KeyValue
}

// NewHistory returns a History backed by db. A nil db disables recording.
func NewHistory(db KeyValue) *History {
	if db == nil {
		db = &NoOpDB{}
	}
	return &History{db: db}
}

// Enabled reports whether records are actually stored.
func (h *History) Enabled() bool {
	_, ok := h.db.(*NoOpDB)
	return !ok
}

// Record stores a SendRecord for address and returns it. With storage
// disabled, the record is returned along with ErrNoOp.
func (h *History) Record(address string, subject string) (SendRecord, error) {
	r := NewSendRecord(address, subject)
	e, err := r.NewKVEntry()
	if err != nil {
		return SendRecord{}, err
	}
	if err := h.db.Put(e); err != nil {
		if errors.Is(err, ErrNoOp) {
			return r, err
		}
		return SendRecord{}, fmt.Errorf("can't record the send to %v: %v", address, err)
	}
	return r, nil
}

// Lookup returns the SendRecord with the given ID.
func (h *History) Lookup(id uuid.UUID) (SendRecord, error) {
	e, err := h.db.Read(sendKey(id))
	if err != nil {
		return SendRecord{}, err
	}

	var r SendRecord
	if err := json.Unmarshal(e.Value, &r); err != nil {
		return SendRecord{}, fmt.Errorf("can't parse the send record %v: %v", id, err)
	}
	return r, nil
}

// List returns every unexpired SendRecord, oldest first.
func (h *History) List() ([]SendRecord, error) {
	entries, err := h.db.Scan([]byte(sendKeyPrefix))
	if err != nil {
		return nil, err
	}

	records := make([]SendRecord, 0, len(entries))
	for _, e := range entries {
		var r SendRecord
		if err := json.Unmarshal(e.Value, &r); err != nil {
			return nil, fmt.Errorf("can't parse the send record at %q: %v", e.Key, err)
		}
		records = append(records, r)
	}

	// Keys are random UUIDs, so key order says nothing about time
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].SentAt.Before(records[j].SentAt)
	})
	return records, nil
}

// Close cleans up expired records and closes the underlying KeyValue. The
// KeyValue is closed even if cleanup fails.
func (h *History) Close() error {
	cerr := h.db.Cleanup()
	if err := h.db.Close(); err != nil {
		return err
	}
	return cerr
}
