package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cheatsheets/pkg/performance"
)

const fileExt = ".json"

// FileBackend stores each key as a JSON file in a data directory
type FileBackend struct {
	dataDir          string
	mutex            sync.RWMutex
	fileModTimes     map[string]time.Time
	pendingDeletions map[string]bool // deletions made by this process
	quietPeriod      time.Duration
	logger           zerolog.Logger
}

// FileOption configures a FileBackend
type FileOption func(*FileBackend)

// WithFileLogger sets the backend logger
func WithFileLogger(logger zerolog.Logger) FileOption {
	return func(b *FileBackend) { b.logger = logger }
}

// WithQuietPeriod sets how long a key must be quiet before a change is reported
func WithQuietPeriod(d time.Duration) FileOption {
	return func(b *FileBackend) { b.quietPeriod = d }
}

// NewFileBackend creates the data directory if needed
func NewFileBackend(dataDir string, opts ...FileOption) (*FileBackend, error) {
	b := &FileBackend{
		dataDir:          dataDir,
		fileModTimes:     make(map[string]time.Time),
		pendingDeletions: make(map[string]bool),
		quietPeriod:      100 * time.Millisecond,
		logger:           log.Logger,
	}
	for _, opt := range opts {
		opt(b)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return b, nil
}

// DataDir returns the data directory path
func (b *FileBackend) DataDir() string {
	return b.dataDir
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dataDir, key+fileExt)
}

// Get reads the file for key
func (b *FileBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(b.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set replaces the file for key through a temp file and rename
func (b *FileBackend) Set(_ context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(b.dataDir, "."+key+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	filename := b.path(key)

	// Remember our own write before it lands so the watcher skips it.
	// Rename keeps the temp file's modification time.
	if fileInfo, err := os.Stat(tmpName); err == nil {
		b.mutex.Lock()
		b.fileModTimes[filename] = fileInfo.ModTime()
		b.mutex.Unlock()
	}

	if err := os.Rename(tmpName, filename); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Delete removes the file for key; a missing file is not an error
func (b *FileBackend) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	filename := b.path(key)

	b.mutex.Lock()
	b.pendingDeletions[key] = true
	delete(b.fileModTimes, filename)
	b.mutex.Unlock()

	err := os.Remove(filename)
	if err != nil {
		// no removal event will follow
		b.mutex.Lock()
		delete(b.pendingDeletions, key)
		b.mutex.Unlock()
	}
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close has nothing to release; watchers stop with their context
func (b *FileBackend) Close() error { return nil }

// Watch reports keys changed by other processes until ctx is done.
// Bursts of events for one key are debounced into a single callback.
func (b *FileBackend) Watch(ctx context.Context, onChange func(key string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	if err := watcher.Add(b.dataDir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch data directory: %w", err)
	}

	debouncer := performance.NewDebouncer(b.quietPeriod)

	go func() {
		defer watcher.Close()
		defer debouncer.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				key, ok := b.keyFromPath(event.Name)
				if !ok {
					continue
				}

				var external bool
				switch {
				case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
					external = b.handleFileWrite(event.Name)
				case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
					external = b.handleFileRemove(key, event.Name)
				}
				if !external {
					continue
				}

				b.logger.Debug().Str("key", key).Str("op", event.Op.String()).Msg("External storage change")
				debouncer.Debounce(key, func() { onChange(key) })

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				b.logger.Warn().Err(err).Msg("Watcher error")
			}
		}
	}()

	return nil
}

func (b *FileBackend) keyFromPath(path string) (string, bool) {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, fileExt) {
		return "", false
	}
	key := strings.TrimSuffix(name, fileExt)
	return key, IsValidKey(key)
}

// handleFileWrite reports whether a write came from outside this process
func (b *FileBackend) handleFileWrite(filePath string) bool {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return false
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	lastModTime, exists := b.fileModTimes[filePath]
	currentModTime := fileInfo.ModTime()

	// Same modification time as our last write
	if exists && !currentModTime.After(lastModTime) {
		return false
	}
	b.fileModTimes[filePath] = currentModTime
	return true
}

// handleFileRemove reports whether a removal came from outside this process
func (b *FileBackend) handleFileRemove(key, filePath string) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	wasAppDeleted := b.pendingDeletions[key]
	delete(b.pendingDeletions, key)
	delete(b.fileModTimes, filePath)
	return !wasAppDeleted
}
