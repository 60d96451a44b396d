package storage

import (
	"context"
	"fmt"
	"path/filepath"
)

// Backend kinds
const (
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindRedis  = "redis"
	KindMemory = "memory"
)

// BackendSpec selects and locates a backend
type BackendSpec struct {
	Kind        string
	DataDir     string
	SQLitePath  string
	RedisURL    string
	RedisPrefix string
}

// Open constructs the backend described by spec
func Open(ctx context.Context, spec BackendSpec) (Backend, error) {
	switch spec.Kind {
	case KindFile, "":
		return NewFileBackend(spec.DataDir)
	case KindSQLite:
		path := spec.SQLitePath
		if path == "" {
			path = filepath.Join(spec.DataDir, "cheatsheets.db")
		}
		return OpenSQLite(path)
	case KindRedis:
		if spec.RedisURL == "" {
			return nil, fmt.Errorf("redis backend requires a URL")
		}
		return OpenRedis(ctx, spec.RedisURL, spec.RedisPrefix)
	case KindMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", spec.Kind)
	}
}
