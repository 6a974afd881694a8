// Package storage persists frozen rule documents and the financial records
// computed against them, so a stored result can always be traced back to
// the exact rules that produced it.
package storage

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"catering-finance/core/determinism"
	"catering-finance/core/rules"
	"catering-finance/core/types"
	"catering-finance/internal/errors"
)

// Backend is a storage backend type
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// Store is the storage interface
type Store interface {
	// SaveSnapshot freezes a rule document. Saving a document whose
	// content hash is already stored returns the existing snapshot.
	SaveSnapshot(ctx context.Context, name string, cfg *rules.Configuration) (*Snapshot, error)

	// GetSnapshot retrieves a snapshot by ID
	GetSnapshot(ctx context.Context, id string) (*Snapshot, error)

	// LatestSnapshot returns the most recently created snapshot
	LatestSnapshot(ctx context.Context) (*Snapshot, error)

	// ListSnapshots lists snapshots, newest first
	ListSnapshots(ctx context.Context, filter *ListFilter) ([]*Snapshot, error)

	// SaveRecord stores a computed result against a snapshot
	SaveRecord(ctx context.Context, rec *Record) error

	// GetRecord retrieves a record by ID
	GetRecord(ctx context.Context, id string) (*Record, error)

	// ListRecords lists the records computed against one snapshot, newest first
	ListRecords(ctx context.Context, snapshotID string, filter *ListFilter) ([]*Record, error)

	// Close closes the store
	Close() error
}

// Snapshot is a frozen rule document
type Snapshot struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Hash      string               `json:"hash"`
	Rules     *rules.Configuration `json:"rules"`
	CreatedAt time.Time            `json:"created_at"`
}

// Record is one event's financials and the input that produced them
type Record struct {
	ID         string                 `json:"id"`
	SnapshotID string                 `json:"snapshot_id"`
	EventRef   string                 `json:"event_ref,omitempty"`
	Input      types.EventInput       `json:"input"`
	Result     *types.EventFinancials `json:"result"`
	CreatedAt  time.Time              `json:"created_at"`
}

// ListFilter limits list queries
type ListFilter struct {
	// Limit caps the number of rows; zero means no limit
	Limit int
}

func (f *ListFilter) limit() int {
	if f == nil || f.Limit <= 0 {
		return -1
	}
	return f.Limit
}

// HashRules returns the hex content hash of a rule document
func HashRules(cfg *rules.Configuration) (string, error) {
	h, err := determinism.HashJSON(cfg)
	if err != nil {
		return "", errors.Internal("failed to hash rule document", err)
	}
	return h.Hex(), nil
}

// prepareRecord validates a record and fills its ID and event reference
func prepareRecord(rec *Record) error {
	if rec == nil || rec.Result == nil {
		return errors.Input("record has no result")
	}
	if rec.SnapshotID == "" {
		return errors.Input("record has no snapshot id")
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.EventRef == "" {
		rec.EventRef = rec.Input.EventID
	}
	return nil
}

// MemoryStore is an in-memory storage backend (for tests and ephemeral servers)
type MemoryStore struct {
	snapshots map[string]*Snapshot
	byHash    map[string]string
	records   map[string]*Record
	last      time.Time
	mu        sync.RWMutex
}

// NewMemoryStore creates a memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string]*Snapshot),
		byHash:    make(map[string]string),
		records:   make(map[string]*Record),
	}
}

// now returns a strictly increasing timestamp; callers hold the write lock
func (s *MemoryStore) now() time.Time {
	t := time.Now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Nanosecond)
	}
	s.last = t
	return t
}

func (s *MemoryStore) SaveSnapshot(ctx context.Context, name string, cfg *rules.Configuration) (*Snapshot, error) {
	if cfg == nil {
		return nil, errors.Input("snapshot has no rule document")
	}
	hash, err := HashRules(cfg)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byHash[hash]; ok {
		return s.snapshots[id], nil
	}

	snap := &Snapshot{
		ID:        uuid.New().String(),
		Name:      name,
		Hash:      hash,
		Rules:     cfg.Clone(),
		CreatedAt: s.now(),
	}
	s.snapshots[snap.ID] = snap
	s.byHash[hash] = snap.ID
	return snap, nil
}

func (s *MemoryStore) GetSnapshot(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[id]
	if !ok {
		return nil, errors.NotFound("snapshot", id)
	}
	return snap, nil
}

func (s *MemoryStore) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	list, err := s.ListSnapshots(ctx, &ListFilter{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errors.NotFound("snapshot", "latest")
	}
	return list[0], nil
}

func (s *MemoryStore) ListSnapshots(ctx context.Context, filter *ListFilter) ([]*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		list = append(list, snap)
	}
	slices.SortFunc(list, func(a, b *Snapshot) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if n := filter.limit(); n >= 0 && len(list) > n {
		list = list[:n]
	}
	return list, nil
}

func (s *MemoryStore) SaveRecord(ctx context.Context, rec *Record) error {
	if err := prepareRecord(rec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snapshots[rec.SnapshotID]; !ok {
		return errors.NotFound("snapshot", rec.SnapshotID)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}

	// round-trip so later mutation by the caller cannot reach the store
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Internal("failed to encode record", err)
	}
	var stored Record
	if err := json.Unmarshal(data, &stored); err != nil {
		return errors.Internal("failed to decode record", err)
	}
	s.records[rec.ID] = &stored
	return nil
}

func (s *MemoryStore) GetRecord(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, errors.NotFound("record", id)
	}
	return rec, nil
}

func (s *MemoryStore) ListRecords(ctx context.Context, snapshotID string, filter *ListFilter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*Record
	for _, rec := range s.records {
		if rec.SnapshotID == snapshotID {
			list = append(list, rec)
		}
	}
	slices.SortFunc(list, func(a, b *Record) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if n := filter.limit(); n >= 0 && len(list) > n {
		list = list[:n]
	}
	return list, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
