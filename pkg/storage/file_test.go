package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changeLog struct {
	mu   sync.Mutex
	keys []string
}

func (c *changeLog) add(key string) {
	c.mu.Lock()
	c.keys = append(c.keys, key)
	c.mu.Unlock()
}

func (c *changeLog) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.keys...)
}

func TestFileBackendLayout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "cheat-sheets", []byte(`[]`)))
	assert.FileExists(t, filepath.Join(dir, "cheat-sheets.json"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")

	require.NoError(t, b.Delete(ctx, "cheat-sheets"))
	require.NoError(t, b.Delete(ctx, "cheat-sheets"))
	assert.NoFileExists(t, filepath.Join(dir, "cheat-sheets.json"))

	assert.Error(t, b.Set(ctx, "../x", []byte(`1`)))
	_, _, err = b.Get(ctx, "a/b")
	assert.Error(t, err)
}

func TestFileBackendWatchReportsExternalWrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	b, err := NewFileBackend(dir, WithQuietPeriod(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := &changeLog{}
	require.NoError(t, b.Watch(ctx, changes.add))

	// our own write is not reported
	require.NoError(t, b.Set(ctx, "custom-categories", []byte(`["git"]`)))
	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, changes.snapshot())

	// another process writes the same slot
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom-categories.json"), []byte(`["git","shell"]`), 0644))

	assert.Eventually(t, func() bool {
		keys := changes.snapshot()
		return len(keys) == 1 && keys[0] == "custom-categories"
	}, 2*time.Second, 10*time.Millisecond)

	data, ok, err := b.Get(ctx, "custom-categories")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `["git","shell"]`, string(data))

	// unrelated files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, changes.snapshot(), 1)
}

func TestFileBackendWatchReportsExternalRemoval(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	b, err := NewFileBackend(dir, WithQuietPeriod(10*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, b.Set(ctx, "cheat-sheets", []byte(`[]`)))
	require.NoError(t, b.Set(ctx, "auth-token", []byte(`"t"`)))

	changes := &changeLog{}
	require.NoError(t, b.Watch(ctx, changes.add))

	require.NoError(t, b.Delete(ctx, "auth-token"))
	require.NoError(t, os.Remove(filepath.Join(dir, "cheat-sheets.json")))

	assert.Eventually(t, func() bool {
		keys := changes.snapshot()
		return len(keys) == 1 && keys[0] == "cheat-sheets"
	}, 2*time.Second, 10*time.Millisecond)
}
