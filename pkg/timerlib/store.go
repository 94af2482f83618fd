package timerlib

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/warpdl/warptimer/pkg/logger"
)

// StorageKey is the blob key holding the whole timer collection.
const StorageKey = "timers"

// Store is the single source of truth for the ordered timer collection.
// Every mutation re-persists the whole collection before returning.
//
// When the blob store fails the Store degrades to memory-only operation for
// the rest of the session; the failure is logged once and never surfaced as fatal.
type Store struct {
	mu     sync.RWMutex
	timers []*Timer
	index  map[string]*Timer
	blobs  BlobStore
	log    logger.Logger
	newID  func() string

	memoryOnly bool
}

// NewStore creates an empty store backed by blobs.
// A nil blobs store runs memory-only from the start.
func NewStore(blobs BlobStore, l logger.Logger) *Store {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Store{
		index:      make(map[string]*Timer),
		blobs:      blobs,
		log:        l,
		newID:      uuid.NewString,
		memoryOnly: blobs == nil,
	}
}

// Hydrate replaces the in-memory collection with the persisted one.
// A missing or unreadable blob yields an empty collection. Records are
// normalised: duplicate ids are dropped, remaining seconds are clamped and
// links to timers that no longer exist are cleared.
func (s *Store) Hydrate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timers = nil
	s.index = make(map[string]*Timer)
	if s.memoryOnly {
		return
	}

	data, err := s.blobs.Get(StorageKey)
	if errors.Is(err, ErrBlobNotFound) {
		return
	}
	if err != nil {
		s.degradeLocked(fmt.Errorf("hydrate: %w", err))
		return
	}

	var loaded []Timer
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.log.Warning("timerlib: stored timers are invalid, starting fresh: %v", err)
		return
	}
	for i := range loaded {
		t := loaded[i]
		if t.ID == "" {
			t.ID = s.newID()
		}
		if _, dup := s.index[t.ID]; dup {
			s.log.Warning("timerlib: dropping duplicate timer %s", t.ID)
			continue
		}
		if !t.Sound.Valid() {
			t.Sound = SoundBell
		}
		t.normalize()
		s.timers = append(s.timers, &t)
		s.index[t.ID] = &t
	}
	for _, t := range s.timers {
		if t.NextTimerID != "" && s.index[t.NextTimerID] == nil {
			t.NextTimerID = ""
		}
	}
}

// Persist serialises the whole collection to the blob store.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

// persistLocked writes the collection. Caller must hold the write lock.
func (s *Store) persistLocked() error {
	if s.memoryOnly {
		return nil
	}
	out := make([]Timer, len(s.timers))
	for i, t := range s.timers {
		out[i] = *t
	}
	data, err := json.Marshal(out)
	if err != nil {
		return s.degradeLocked(fmt.Errorf("encode timers: %w", err))
	}
	if err := s.blobs.Put(StorageKey, data); err != nil {
		return s.degradeLocked(fmt.Errorf("persist: %w", err))
	}
	return nil
}

func (s *Store) degradeLocked(err error) error {
	s.memoryOnly = true
	s.log.Error("timerlib: %v; continuing in memory only", err)
	return err
}

// MemoryOnly reports whether persistence has been disabled for this session.
func (s *Store) MemoryOnly() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.memoryOnly
}

// Create appends a new stopped timer with a fresh id.
func (s *Store) Create(name string, totalSeconds int, sound Sound) (Timer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Timer{}, ErrEmptyName
	}
	if !ValidTotal(totalSeconds) {
		return Timer{}, ErrInvalidDuration
	}
	if !sound.Valid() {
		return Timer{}, fmt.Errorf("%w: %q", ErrUnknownSound, sound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t := &Timer{
		ID:               s.newID(),
		Name:             name,
		TotalSeconds:     totalSeconds,
		RemainingSeconds: totalSeconds,
		Sound:            sound,
	}
	s.timers = append(s.timers, t)
	s.index[t.ID] = t
	_ = s.persistLocked()
	return *t, nil
}

// FindByID returns a copy of the timer with the given id.
func (s *Store) FindByID(id string) (Timer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.index[id]
	if !ok {
		return Timer{}, false
	}
	return *t, true
}

// List returns copies of all timers in display order.
func (s *Store) List() []Timer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Timer, len(s.timers))
	for i, t := range s.timers {
		out[i] = *t
	}
	return out
}

// Len returns the number of timers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.timers)
}

// Update applies fn to the timer with the given id, re-establishes the record
// invariants and persists. The id, name, total and sound are immutable and
// restored if fn touches them.
func (s *Store) Update(id string, fn func(t *Timer)) (Timer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.index[id]
	if !ok {
		return Timer{}, ErrTimerNotFound
	}
	keep := *t
	fn(t)
	t.ID, t.Name, t.TotalSeconds, t.Sound = keep.ID, keep.Name, keep.TotalSeconds, keep.Sound
	if t.NextTimerID != "" && s.index[t.NextTimerID] == nil {
		t.NextTimerID = keep.NextTimerID
	}
	t.normalize()
	_ = s.persistLocked()
	return *t, nil
}

// SetLink sets (or, with an empty toID, clears) the chain link of fromID.
// Cycles, including self-links, are accepted.
func (s *Store) SetLink(fromID, toID string) (Timer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	from, ok := s.index[fromID]
	if !ok {
		return Timer{}, ErrTimerNotFound
	}
	if toID != "" {
		if _, ok := s.index[toID]; !ok {
			return Timer{}, fmt.Errorf("link target %s: %w", toID, ErrTimerNotFound)
		}
	}
	from.NextTimerID = toID
	_ = s.persistLocked()
	return *from, nil
}

// Delete removes the timer and clears every link that pointed at it.
// It returns the ids of the timers whose link was cleared.
func (s *Store) Delete(id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[id]; !ok {
		return nil, ErrTimerNotFound
	}
	kept := s.timers[:0]
	for _, t := range s.timers {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	// drop the stale tail pointer so the removed record can be collected
	s.timers[len(s.timers)-1] = nil
	s.timers = kept
	delete(s.index, id)
	cleared := s.clearLinksToLocked(id)
	_ = s.persistLocked()
	return cleared, nil
}

func (s *Store) clearLinksToLocked(id string) []string {
	var cleared []string
	for _, t := range s.timers {
		if t.NextTimerID == id {
			t.NextTimerID = ""
			cleared = append(cleared, t.ID)
		}
	}
	return cleared
}

// Reorder replaces the display order. ids must contain every timer exactly once.
func (s *Store) Reorder(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(ids) != len(s.timers) {
		return ErrInvalidOrder
	}
	seen := make(map[string]bool, len(ids))
	ordered := make([]*Timer, 0, len(ids))
	for _, id := range ids {
		t, ok := s.index[id]
		if !ok || seen[id] {
			return ErrInvalidOrder
		}
		seen[id] = true
		ordered = append(ordered, t)
	}
	s.timers = ordered
	_ = s.persistLocked()
	return nil
}
