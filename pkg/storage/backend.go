package storage

import (
	"context"
	"fmt"
	"regexp"
)

// Backend is a raw key to bytes store
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Watcher is implemented by backends that can report writes made by other processes
type Watcher interface {
	Watch(ctx context.Context, onChange func(key string)) error
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// IsValidKey checks that a key is safe to use as a file name or table key
func IsValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

func checkKey(key string) error {
	if !IsValidKey(key) {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}
