// Package session keeps track of the documents opened through the HTTP API.
//
// Every opened document gets a random id. The id maps to a [Record] (the raw
// document plus its view state) held in a [Store], and to a live
// [viewer.Handle] held by the [Registry]. Records outlive the process when a
// persistent store is used; handles are rebuilt from them on first access.
//
// # Backends
//
//   - MemoryStore: records live as long as the process
//   - FileStore: records are JSON files in a directory
//
// # Usage
//
//	reg := session.NewRegistry(session.NewMemoryStore(), viewer.Options{}, session.DefaultTTL)
//	sess, err := reg.Open(ctx, "report.json", data)
//	sess.Handle.ToggleCollapse("node-3")
//	_ = reg.Save(ctx, sess.ID)
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// Record is the persistent part of a session.
type Record struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Document  []byte    `json:"document"`
	Collapsed []string  `json:"collapsed,omitempty"`
	Query     string    `json:"query,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired returns true if the record has expired.
func (r *Record) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

// Store is the interface for record storage backends.
type Store interface {
	// Get retrieves a record by ID.
	// Returns nil, nil if the record doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Record, error)

	// Set stores a record.
	Set(ctx context.Context, rec *Record) error

	// Delete removes a record.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired records.
	Cleanup(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// DefaultTTL is the default session duration.
const DefaultTTL = 24 * time.Hour

// GenerateID returns a new random session id.
func GenerateID() string {
	return uuid.NewString()
}

// ValidID reports whether id has the form of a generated session id.
// Stores use it to reject path-like ids before touching disk.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// NewRecord creates a record for a freshly opened document.
func NewRecord(source string, document []byte, ttl time.Duration) *Record {
	now := time.Now()
	return &Record{
		ID:        GenerateID(),
		Source:    source,
		Document:  document,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}
