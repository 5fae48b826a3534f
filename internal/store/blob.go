// Package store persists the client's session list as a single serialized
// blob behind a small key-value abstraction, so the backing medium (plain
// file, sqlite) can be swapped without touching the coordinator.
package store

import "context"

// SessionsKey is the well-known key the full session list lives under.
const SessionsKey = "agentchat.sessions"

// Blob is a minimal durable key-value store. Load reports found=false for an
// absent key without error; corruption of the medium itself is an error.
type Blob interface {
	Load(ctx context.Context, key string) (data []byte, found bool, err error)
	Save(ctx context.Context, key string, data []byte) error
	Close() error
}
