package timerlib

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/warpdl/warptimer/pkg/logger"
)

// countingBlobStore wraps a BlobStore and counts Put calls.
type countingBlobStore struct {
	BlobStore
	puts int
}

func (c *countingBlobStore) Put(key string, data []byte) error {
	c.puts++
	return c.BlobStore.Put(key, data)
}

// failingBlobStore fails every operation.
type failingBlobStore struct {
	err error
}

func (f *failingBlobStore) Get(string) ([]byte, error) { return nil, f.err }
func (f *failingBlobStore) Put(string, []byte) error   { return f.err }

func newTestStore(t *testing.T) (*Store, *FileBlobStore) {
	t.Helper()
	blobs := NewFileBlobStore(afero.NewMemMapFs(), "/cfg")
	s := NewStore(blobs, logger.NewNopLogger())
	seq := 0
	s.newID = func() string {
		seq++
		return fmt.Sprintf("t%d", seq)
	}
	return s, blobs
}

func mustCreate(t *testing.T, s *Store, name string, total int) Timer {
	t.Helper()
	tm, err := s.Create(name, total, SoundBell)
	if err != nil {
		t.Fatalf("Create(%s): %v", name, err)
	}
	return tm
}

func TestStore_Create(t *testing.T) {
	s, _ := newTestStore(t)

	tm, err := s.Create("  Tea  ", 180, SoundChime)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tm.ID == "" {
		t.Fatal("expected an id")
	}
	if tm.Name != "Tea" {
		t.Errorf("expected trimmed name, got %q", tm.Name)
	}
	if tm.RemainingSeconds != 180 || tm.TotalSeconds != 180 {
		t.Errorf("expected 180/180, got %d/%d", tm.RemainingSeconds, tm.TotalSeconds)
	}
	if tm.IsRunning || tm.NextTimerID != "" {
		t.Errorf("expected stopped, unlinked timer, got %+v", tm)
	}
}

func TestStore_CreateValidation(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.Create("", 10, SoundBell); !errors.Is(err, ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
	if _, err := s.Create("x", -1, SoundBell); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("expected ErrInvalidDuration, got %v", err)
	}
	if _, err := s.Create("x", MaxTotalSeconds+1, SoundBell); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("expected ErrInvalidDuration past the limit, got %v", err)
	}
	if _, err := s.Create("x", 10, Sound("gong")); !errors.Is(err, ErrUnknownSound) {
		t.Errorf("expected ErrUnknownSound, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expected no timers, got %d", s.Len())
	}
}

func TestStore_CreateUniqueIDs(t *testing.T) {
	s := NewStore(nil, nil)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		tm := mustCreate(t, s, "t", 1)
		if seen[tm.ID] {
			t.Fatalf("duplicate id %s", tm.ID)
		}
		seen[tm.ID] = true
	}
}

func TestStore_PersistRoundTrip(t *testing.T) {
	s, blobs := newTestStore(t)
	a := mustCreate(t, s, "A", 2)
	b := mustCreate(t, s, "B", 5)
	if _, err := s.SetLink(a.ID, b.ID); err != nil {
		t.Fatalf("SetLink: %v", err)
	}

	fresh := NewStore(blobs, nil)
	fresh.Hydrate()
	got := fresh.List()
	if len(got) != 2 {
		t.Fatalf("expected 2 timers, got %d", len(got))
	}
	if got[0].ID != a.ID || got[1].ID != b.ID {
		t.Errorf("order not preserved: %v", got)
	}
	if got[0].NextTimerID != b.ID {
		t.Errorf("expected link to %s, got %q", b.ID, got[0].NextTimerID)
	}
}

func TestStore_PersistRewritesCollection(t *testing.T) {
	s, blobs := newTestStore(t)
	mustCreate(t, s, "A", 2)
	if err := blobs.fs.Remove(blobs.path(StorageKey)); err != nil {
		t.Fatalf("remove blob: %v", err)
	}
	if err := s.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	fresh := NewStore(blobs, nil)
	fresh.Hydrate()
	if fresh.Len() != 1 {
		t.Fatalf("expected 1 timer after Persist, got %d", fresh.Len())
	}

	s = NewStore(nil, nil)
	if err := s.Persist(); err != nil {
		t.Errorf("memory-only Persist should be a no-op, got %v", err)
	}
}

func TestStore_PersistedShape(t *testing.T) {
	s, blobs := newTestStore(t)
	mustCreate(t, s, "A", 2)

	data, err := blobs.Get(StorageKey)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"id", "name", "totalSeconds", "remainingSeconds", "sound", "isRunning", "nextTimerId"} {
		if _, ok := raw[0][key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	if raw[0]["nextTimerId"] != nil {
		t.Errorf("expected null nextTimerId, got %v", raw[0]["nextTimerId"])
	}
}

func TestStore_HydrateMissing(t *testing.T) {
	s, _ := newTestStore(t)
	s.Hydrate()
	if s.Len() != 0 {
		t.Fatalf("expected empty collection, got %d", s.Len())
	}
	if s.MemoryOnly() {
		t.Fatal("missing data must not disable persistence")
	}
}

func TestStore_HydrateGarbage(t *testing.T) {
	blobs := NewFileBlobStore(afero.NewMemMapFs(), "/cfg")
	if err := blobs.Put(StorageKey, []byte("{not json")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	mock := logger.NewMockLogger()
	s := NewStore(blobs, mock)
	s.Hydrate()
	if s.Len() != 0 {
		t.Fatalf("expected empty collection, got %d", s.Len())
	}
	if len(mock.Warnings()) != 1 {
		t.Errorf("expected one warning, got %v", mock.Warnings())
	}
}

func TestStore_HydrateNormalizes(t *testing.T) {
	blobs := NewFileBlobStore(afero.NewMemMapFs(), "/cfg")
	raw := `[
		{"id":"a","name":"A","totalSeconds":10,"remainingSeconds":50,"sound":"bell","isRunning":false,"nextTimerId":"gone"},
		{"id":"b","name":"B","totalSeconds":10,"remainingSeconds":0,"sound":"nope","isRunning":true,"nextTimerId":"a"},
		{"id":"a","name":"dup","totalSeconds":1,"remainingSeconds":1,"sound":"bell","isRunning":false,"nextTimerId":null}
	]`
	if err := blobs.Put(StorageKey, []byte(raw)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	s := NewStore(blobs, nil)
	s.Hydrate()

	got := s.List()
	if len(got) != 2 {
		t.Fatalf("expected duplicate dropped, got %d timers", len(got))
	}
	if got[0].RemainingSeconds != 10 {
		t.Errorf("expected remaining clamped to 10, got %d", got[0].RemainingSeconds)
	}
	if got[0].NextTimerID != "" {
		t.Errorf("expected dangling link cleared, got %q", got[0].NextTimerID)
	}
	if got[1].IsRunning {
		t.Error("finished timer must not be running")
	}
	if got[1].Sound != SoundBell {
		t.Errorf("expected unknown sound to fall back to bell, got %q", got[1].Sound)
	}
	if got[1].NextTimerID != "a" {
		t.Errorf("expected valid link kept, got %q", got[1].NextTimerID)
	}
}

func TestStore_PersistFailureDegrades(t *testing.T) {
	mock := logger.NewMockLogger()
	s := NewStore(&failingBlobStore{err: errors.New("disk full")}, mock)

	tm, err := s.Create("A", 5, SoundBell)
	if err != nil {
		t.Fatalf("Create must succeed in memory: %v", err)
	}
	if !s.MemoryOnly() {
		t.Fatal("expected memory-only mode after write failure")
	}
	if _, ok := s.FindByID(tm.ID); !ok {
		t.Fatal("timer must still be available in memory")
	}
	mustCreate(t, s, "B", 5)
	if n := len(mock.Errors()); n != 1 {
		t.Errorf("expected failure logged once, got %d: %v", n, mock.Errors())
	}
}

func TestStore_HydrateReadFailureDegrades(t *testing.T) {
	s := NewStore(&failingBlobStore{err: errors.New("io error")}, nil)
	s.Hydrate()
	if s.Len() != 0 || !s.MemoryOnly() {
		t.Fatalf("expected empty memory-only store, len=%d memoryOnly=%v", s.Len(), s.MemoryOnly())
	}
}

func TestStore_UpdateClamps(t *testing.T) {
	s, _ := newTestStore(t)
	tm := mustCreate(t, s, "A", 10)

	got, err := s.Update(tm.ID, func(t *Timer) {
		t.IsRunning = true
		t.RemainingSeconds = -3
		t.TotalSeconds = 99
		t.Name = "changed"
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.RemainingSeconds != 0 || got.IsRunning {
		t.Errorf("expected 0 remaining and stopped, got %+v", got)
	}
	if got.TotalSeconds != 10 || got.Name != "A" {
		t.Errorf("immutable fields changed: %+v", got)
	}

	if _, err := s.Update("missing", func(*Timer) {}); !errors.Is(err, ErrTimerNotFound) {
		t.Errorf("expected ErrTimerNotFound, got %v", err)
	}
}

func TestStore_SetLink(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustCreate(t, s, "A", 1)

	if _, err := s.SetLink(a.ID, a.ID); err != nil {
		t.Fatalf("self link must be accepted: %v", err)
	}
	if _, err := s.SetLink(a.ID, "missing"); !errors.Is(err, ErrTimerNotFound) {
		t.Errorf("expected ErrTimerNotFound for missing target, got %v", err)
	}
	got, err := s.SetLink(a.ID, "")
	if err != nil || got.NextTimerID != "" {
		t.Errorf("expected link cleared, got %+v err=%v", got, err)
	}
}

func TestStore_DeleteClearsLinks(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustCreate(t, s, "A", 1)
	b := mustCreate(t, s, "B", 1)
	c := mustCreate(t, s, "C", 1)
	s.SetLink(a.ID, b.ID)
	s.SetLink(c.ID, b.ID)

	cleared, err := s.Delete(b.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(cleared) != 2 || cleared[0] != a.ID || cleared[1] != c.ID {
		t.Errorf("expected [%s %s] cleared, got %v", a.ID, c.ID, cleared)
	}
	if _, ok := s.FindByID(b.ID); ok {
		t.Error("deleted timer still present")
	}
	for _, id := range []string{a.ID, c.ID} {
		tm, _ := s.FindByID(id)
		if tm.NextTimerID != "" {
			t.Errorf("%s still links to deleted timer", id)
		}
	}
	if _, err := s.Delete(b.ID); !errors.Is(err, ErrTimerNotFound) {
		t.Errorf("expected ErrTimerNotFound on second delete, got %v", err)
	}
}

func TestStore_DeleteSelfLinked(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustCreate(t, s, "A", 1)
	s.SetLink(a.ID, a.ID)
	cleared, err := s.Delete(a.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(cleared) != 0 {
		t.Errorf("expected nothing cleared, got %v", cleared)
	}
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d", s.Len())
	}
}

func TestStore_Reorder(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustCreate(t, s, "A", 1)
	b := mustCreate(t, s, "B", 2)
	c := mustCreate(t, s, "C", 3)

	if err := s.Reorder([]string{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	var names []string
	for _, tm := range s.List() {
		names = append(names, tm.Name)
	}
	if strings.Join(names, "") != "CAB" {
		t.Errorf("expected CAB, got %v", names)
	}

	bad := [][]string{
		{a.ID, b.ID},
		{a.ID, a.ID, b.ID},
		{a.ID, b.ID, "missing"},
	}
	for _, ids := range bad {
		if err := s.Reorder(ids); !errors.Is(err, ErrInvalidOrder) {
			t.Errorf("Reorder(%v): expected ErrInvalidOrder, got %v", ids, err)
		}
	}
}

func TestStore_IdenticalWriteIsNoop(t *testing.T) {
	fs := afero.NewMemMapFs()
	counting := &countingBlobStore{BlobStore: NewFileBlobStore(fs, "/cfg")}
	s := NewStore(counting, nil)
	tm := mustCreate(t, s, "A", 5)

	before, _ := afero.ReadFile(fs, "/cfg/timers.json")
	if _, err := s.Update(tm.ID, func(t *Timer) { t.IsRunning = false }); err != nil {
		t.Fatalf("Update: %v", err)
	}
	after, _ := afero.ReadFile(fs, "/cfg/timers.json")
	if string(before) != string(after) {
		t.Error("no-op update changed persisted bytes")
	}
	if counting.puts != 2 {
		t.Errorf("expected one write per mutation, got %d", counting.puts)
	}
}
