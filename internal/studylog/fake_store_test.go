package studylog_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"studyroom/internal/studylog"
)

var errStoreDown = errors.New("store down")

// memStore mirrors the SQLite repository semantics in memory.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	now      time.Time
	recent   []studylog.Entry
	archive  []studylog.ArchiveEntry
	archived map[int64]bool
	writes   int

	failInsert  bool
	failList    bool
	failArchive bool
	failDelete  bool
}

func newMemStore() *memStore {
	return &memStore{
		now:      time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC),
		archived: map[int64]bool{},
	}
}

func (m *memStore) tick() time.Time {
	m.now = m.now.Add(time.Second)
	return m.now
}

func (m *memStore) ListRecent(_ context.Context, userID string) ([]studylog.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList {
		return nil, errStoreDown
	}
	var out []studylog.Entry
	for _, e := range m.recent {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) InsertRecent(_ context.Context, userID, date string, d int) (studylog.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsert {
		return studylog.Entry{}, errStoreDown
	}
	m.writes++
	m.nextID++
	e := studylog.Entry{ID: m.nextID, UserID: userID, Date: date, DurationSeconds: d, CreatedAt: m.tick()}
	m.recent = append(m.recent, e)
	return e, nil
}

func (m *memStore) ArchiveMany(_ context.Context, rotationID string, entries []studylog.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failArchive {
		return errStoreDown
	}
	m.writes++
	for _, e := range entries {
		if m.archived[e.ID] {
			continue
		}
		m.archived[e.ID] = true
		m.nextID++
		m.archive = append(m.archive, studylog.ArchiveEntry{
			ID: m.nextID, UserID: e.UserID, Date: e.Date, DurationSeconds: e.DurationSeconds,
			CreatedAt: m.tick(), SourceID: e.ID, RotationID: rotationID,
		})
	}
	return nil
}

func (m *memStore) DeleteRecentByIDs(_ context.Context, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete {
		return errStoreDown
	}
	m.writes++
	drop := map[int64]bool{}
	for _, id := range ids {
		drop[id] = true
	}
	kept := m.recent[:0]
	for _, e := range m.recent {
		if !drop[e.ID] {
			kept = append(kept, e)
		}
	}
	m.recent = kept
	return nil
}

func (m *memStore) ListArchive(_ context.Context, userID string) ([]studylog.ArchiveEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList {
		return nil, errStoreDown
	}
	var out []studylog.ArchiveEntry
	for _, a := range m.archive {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) DeleteArchive(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	var n int64
	kept := m.archive[:0]
	for _, a := range m.archive {
		if a.UserID == userID {
			n++
			continue
		}
		kept = append(kept, a)
	}
	m.archive = kept
	return n, nil
}
