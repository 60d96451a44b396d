package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Store is the durable key-value adapter. Every fault is logged and
// absorbed: reads fall back to the caller's default, writes are dropped.
type Store struct {
	backend Backend
	logger  zerolog.Logger
	timeout time.Duration
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithLogger sets the logger used to report storage faults
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// WithTimeout bounds every backend call
func WithTimeout(d time.Duration) StoreOption {
	return func(s *Store) { s.timeout = d }
}

// NewStore wraps a backend in the fail-open adapter
func NewStore(backend Backend, opts ...StoreOption) *Store {
	s := &Store{
		backend: backend,
		logger:  log.Logger,
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "storage").Logger()
	return s
}

// Backend returns the underlying backend
func (s *Store) Backend() Backend {
	return s.backend
}

// Close closes the underlying backend
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// Read returns the value stored under key, or def when the slot is
// absent, unreadable or holds something that does not decode as T.
func Read[T any](s *Store, key string, def T) T {
	ctx, cancel := s.context()
	defer cancel()

	data, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Error reading from storage")
		return def
	}
	data = bytes.TrimSpace(data)
	if !ok || len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return def
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Error decoding stored value")
		return def
	}
	return value
}

// Write serializes value under key. Failures are logged, never returned.
func Write[T any](s *Store, key string, value T) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Error encoding value for storage")
		return
	}

	ctx, cancel := s.context()
	defer cancel()

	if err := s.backend.Set(ctx, key, data); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Error writing to storage")
	}
}

// Erase removes the slot under key. Failures are logged, never returned.
func (s *Store) Erase(key string) {
	ctx, cancel := s.context()
	defer cancel()

	if err := s.backend.Delete(ctx, key); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Error removing from storage")
	}
}

// Slot binds a key and a default value to a store
type Slot[T any] struct {
	store *Store
	key   string
	def   T
}

// NewSlot creates a typed slot
func NewSlot[T any](store *Store, key string, def T) Slot[T] {
	return Slot[T]{store: store, key: key, def: def}
}

// Key returns the slot's storage key
func (sl Slot[T]) Key() string { return sl.key }

// Get reads the slot, falling back to its default
func (sl Slot[T]) Get() T { return Read(sl.store, sl.key, sl.def) }

// Set writes the slot
func (sl Slot[T]) Set(value T) { Write(sl.store, sl.key, value) }

// Remove erases the slot
func (sl Slot[T]) Remove() { sl.store.Erase(sl.key) }
