package studylog

import (
	"sort"
	"time"
)

// DateLayout is the calendar-day format stored on every log row.
const DateLayout = "2006-01-02"

// DefaultRecentWindow is the number of entries kept in the recent set.
const DefaultRecentWindow = 7

// Entry is a recorded study session in the recent window.
type Entry struct {
	ID              int64     `json:"id"`
	UserID          string    `json:"user_id"`
	Date            string    `json:"date"`
	DurationSeconds int       `json:"duration"`
	CreatedAt       time.Time `json:"created_at"`
}

// ArchiveEntry is a copy of an Entry that rotated out of the recent window.
// SourceID is the recent-row id it was copied from; it is not the archive identity.
type ArchiveEntry struct {
	ID              int64     `json:"id"`
	UserID          string    `json:"user_id"`
	Date            string    `json:"date"`
	DurationSeconds int       `json:"duration"`
	CreatedAt       time.Time `json:"created_at"`
	SourceID        int64     `json:"source_id"`
	RotationID      string    `json:"rotation_id"`
	ArchivedAt      time.Time `json:"archived_at"`
}

// Duration returns the entry length as a time.Duration.
func (e Entry) Duration() time.Duration {
	return time.Duration(e.DurationSeconds) * time.Second
}

// Duration returns the archived entry length as a time.Duration.
func (a ArchiveEntry) Duration() time.Duration {
	return time.Duration(a.DurationSeconds) * time.Second
}

// SortOldestFirst orders entries by insertion: CreatedAt, then ID.
func SortOldestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
}
