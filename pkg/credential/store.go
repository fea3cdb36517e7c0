/*
credential holds the short-lived bearer credential in process memory.

The token is deliberately never persisted: only the refresh secret, which
lives in an HttpOnly cookie owned by the transport, survives beyond the
process. All authenticated calls read the token through a Store; only the
login flow and the silent-refresh path in pkg/httpclient write it.
*/
package credential

import (
	"sync"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Store is an in-memory register for the bearer credential. It is safe
// for concurrent use.
type Store struct {
	mu    sync.RWMutex
	token string
	purge func()
}

// Opt is a functional option for the store.
type Opt func(*Store)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewStore creates a new empty credential store.
func NewStore(opts ...Opt) *Store {
	s := new(Store)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithPurge sets a hook run on Clear which removes legacy durable copies
// of the credential left behind by earlier client versions.
func WithPurge(fn func()) Opt {
	return func(s *Store) {
		s.purge = fn
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Get returns the current bearer credential, or the empty string when
// unauthenticated.
func (s *Store) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set replaces the bearer credential wholesale. An empty token marks the
// store unauthenticated.
func (s *Store) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Clear removes the credential and purges any legacy durable copies.
func (s *Store) Clear() {
	s.mu.Lock()
	purge := s.purge
	s.token = ""
	s.mu.Unlock()
	if purge != nil {
		purge()
	}
}
