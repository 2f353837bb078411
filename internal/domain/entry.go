package domain

import "time"

// Entry is a single journal entry.
//
// Entries are owned by the store; callers receive copies and mutate them
// only through the entry service.
type Entry struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is an opaque unique identifier (UUID string).
	ID string `json:"id"`

	// Index is the 1-based creation ordinal. It is assigned once and never
	// reused while the entry with the highest index still exists.
	Index int64 `json:"index"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	Title string `json:"title"`

	// Content is rich-text HTML, sanitized before it is stored.
	Content string `json:"content"`

	// Preview is derived from Content, see Preview().
	Preview string `json:"preview"`

	// Icon is optional; empty means "no icon".
	Icon Icon `json:"icon,omitempty"`

	// ─────────────────────────────
	// Timestamps
	// ─────────────────────────────

	// Date is the creation time.
	Date time.Time `json:"date"`

	// LastUpdated is nil until the first update.
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

// Clone returns a deep copy of e.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	if e.LastUpdated != nil {
		ts := *e.LastUpdated
		c.LastUpdated = &ts
	}
	return &c
}

// EntryEventKind describes what happened to an entry.
type EntryEventKind string

const (
	EntryCreated EntryEventKind = "created"
	EntryUpdated EntryEventKind = "updated"
	EntryDeleted EntryEventKind = "deleted"
)

// EntryEvent is published after a mutation has been persisted.
type EntryEvent struct {
	Kind EntryEventKind
	ID   string
	At   time.Time
}
