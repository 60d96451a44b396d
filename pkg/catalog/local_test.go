package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cheatsheets/pkg/models"
	"cheatsheets/pkg/storage"
)

func newLocalEngine(t *testing.T, backend storage.Backend, opts ...LocalOption) (*Engine, *storage.Store) {
	t.Helper()
	store := storage.NewStore(backend, storage.WithLogger(zerolog.Nop()))
	e := New(NewLocalPersistence(store, opts...), WithLogger(zerolog.Nop()))
	require.NoError(t, e.Load(context.Background()))
	return e, store
}

func frozenClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// slowBackend delays writes by a varying amount so concurrent writes overlap
type slowBackend struct {
	*storage.MemoryBackend
	writes atomic.Int64
}

func (b *slowBackend) Set(ctx context.Context, key string, value []byte) error {
	time.Sleep(time.Duration(b.writes.Add(1)%4) * time.Millisecond)
	return b.MemoryBackend.Set(ctx, key, value)
}

func TestLocalAddAndUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e, store := newLocalEngine(t, storage.NewMemoryBackend(), WithClock(frozenClock(now)))

	added, err := e.AddRecord(ctx, models.RecordInput{Title: "Grep", Category: "shell", Content: "grep -r"})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, now, added.CreatedAt)
	assert.Equal(t, added.CreatedAt, added.UpdatedAt)

	records := e.Records()
	require.Len(t, records, 1)
	assert.Equal(t, added, records[0])

	updated, err := e.UpdateRecord(ctx, added.ID, models.RecordUpdate{Title: models.StringPtr("Grep basics")})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Grep basics", updated.Title)
	assert.Equal(t, "shell", updated.Category)
	assert.Equal(t, "grep -r", updated.Content)
	assert.Equal(t, added.ID, updated.ID)
	assert.Equal(t, added.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(added.UpdatedAt), "updatedAt must move forward")

	got, ok := e.GetByID(added.ID)
	require.True(t, ok)
	assert.Equal(t, *updated, got)

	stored := storage.Read(store, RecordsKey, []models.Record(nil))
	require.Len(t, stored, 1)
	assert.Equal(t, "Grep basics", stored[0].Title)
}

func TestLocalAddRecordInsertsAtFront(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e, _ := newLocalEngine(t, storage.NewMemoryBackend())

	first, err := e.AddRecord(ctx, models.RecordInput{Title: "first"})
	require.NoError(t, err)
	second, err := e.AddRecord(ctx, models.RecordInput{Title: "second"})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, []string{second.ID, first.ID}, ids(e.Records()))
}

func TestLocalStatePersistsAcrossEngines(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := storage.NewMemoryBackend()

	e, store := newLocalEngine(t, backend)
	_, err := e.AddRecord(ctx, models.RecordInput{Title: "kubectl get pods", Category: "k8s"})
	require.NoError(t, err)
	require.NoError(t, e.AddCategory(ctx, "k8s"))

	reopened := NewLocal(store, WithLogger(zerolog.Nop()))
	assert.Equal(t, e.Records(), reopened.Records())
	assert.Equal(t, []string{"k8s"}, reopened.CustomCategories())
	assert.Equal(t, "local", reopened.Mode())
}

func TestLocalAddCategory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e, store := newLocalEngine(t, storage.NewMemoryBackend())

	require.NoError(t, e.AddCategory(ctx, "  shell "))
	require.NoError(t, e.AddCategory(ctx, "git"))
	require.NoError(t, e.AddCategory(ctx, "shell"))
	require.NoError(t, e.AddCategory(ctx, "   "))
	require.NoError(t, e.AddCategory(ctx, "Shell"))

	want := []string{"Shell", "git", "shell"}
	assert.Equal(t, want, e.CustomCategories())
	assert.Equal(t, want, storage.Read(store, CategoriesKey, []string(nil)))
}

func TestLocalDeleteCategoryOrphansRecords(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e, store := newLocalEngine(t, storage.NewMemoryBackend())

	require.NoError(t, e.AddCategory(ctx, "shell"))
	_, err := e.AddRecord(ctx, models.RecordInput{Title: "ls", Category: "shell"})
	require.NoError(t, err)

	deleted, err := e.DeleteCategory(ctx, "shell")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, e.CustomCategories())
	assert.Empty(t, storage.Read(store, CategoriesKey, []string{"x"}))

	records := e.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "shell", records[0].Category)
	assert.Equal(t, []string{"shell"}, e.Categories(), "orphaned category is still derived from records")

	deleted, err = e.DeleteCategory(ctx, "shell")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestLocalInUseRefusal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e, store := newLocalEngine(t, storage.NewMemoryBackend(), WithInUseRefusal())

	require.NoError(t, e.AddCategory(ctx, "shell"))
	require.NoError(t, e.AddCategory(ctx, "git"))
	_, err := e.AddRecord(ctx, models.RecordInput{Title: "ls", Category: "shell"})
	require.NoError(t, err)
	_, err = e.AddRecord(ctx, models.RecordInput{Title: "ps", Category: "docker"})
	require.NoError(t, err)

	result, err := e.RemoveCategory(ctx, "shell", false)
	require.NoError(t, err)
	assert.True(t, result.InUse)
	assert.False(t, result.Deleted)
	assert.Equal(t, []string{"git", "shell"}, e.CustomCategories())
	assert.Equal(t, []string{"git", "shell"}, storage.Read(store, CategoriesKey, []string(nil)))

	result, err = e.RemoveCategory(ctx, "docker", false)
	require.NoError(t, err)
	assert.True(t, result.InUse, "unregistered category used by a record")

	result, err = e.RemoveCategory(ctx, "git", false)
	require.NoError(t, err)
	assert.True(t, result.Deleted)
	assert.False(t, result.InUse)

	deleted, err := e.ForceDeleteCategory(ctx, "shell")
	require.NoError(t, err)
	assert.True(t, deleted)
	records := e.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "docker", records[0].Category)
	assert.Empty(t, e.CustomCategories())
}

func TestLocalConcurrentMutationsStayPersisted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	backend := &slowBackend{MemoryBackend: storage.NewMemoryBackend()}
	e, store := newLocalEngine(t, backend, WithClock(frozenClock(now)))

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, e.AddCategory(ctx, fmt.Sprintf("cat-%02d", i)))
		}(i)
		go func(i int) {
			defer wg.Done()
			_, err := e.AddRecord(ctx, models.RecordInput{Title: fmt.Sprintf("record %d", i), Category: "shell"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	require.Len(t, e.CustomCategories(), n)
	require.Len(t, e.Records(), n)
	assert.Equal(t, e.CustomCategories(), storage.Read(store, CategoriesKey, []string(nil)))
	assert.Equal(t, e.Records(), storage.Read(store, RecordsKey, []models.Record(nil)))

	for i, r := range e.Records() {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			if i%2 == 0 {
				assert.NoError(t, e.DeleteRecord(ctx, id))
				return
			}
			_, err := e.UpdateRecord(ctx, id, models.RecordUpdate{Content: models.StringPtr("updated")})
			assert.NoError(t, err)
		}(i, r.ID)
	}
	wg.Wait()

	records := e.Records()
	require.Len(t, records, n/2)
	for _, r := range records {
		assert.Equal(t, "updated", r.Content)
	}
	assert.Equal(t, records, storage.Read(store, RecordsKey, []models.Record(nil)))
}

func TestLocalForceDeleteCategoryCascades(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e, store := newLocalEngine(t, storage.NewMemoryBackend())

	require.NoError(t, e.AddCategory(ctx, "shell"))
	_, err := e.AddRecord(ctx, models.RecordInput{Title: "ls", Category: "shell"})
	require.NoError(t, err)
	kept, err := e.AddRecord(ctx, models.RecordInput{Title: "status", Category: "git"})
	require.NoError(t, err)

	deleted, err := e.ForceDeleteCategory(ctx, "shell")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.False(t, e.IsLoading())
	assert.Empty(t, e.CustomCategories())
	assert.Equal(t, []string{kept.ID}, ids(e.Records()))
	assert.Equal(t, []string{kept.ID}, ids(storage.Read(store, RecordsKey, []models.Record(nil))))

	// a category used only by records can still be force deleted
	_, err = e.AddRecord(ctx, models.RecordInput{Title: "run", Category: "docker"})
	require.NoError(t, err)
	deleted, err = e.ForceDeleteCategory(ctx, "docker")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []string{kept.ID}, ids(e.Records()))

	deleted, err = e.ForceDeleteCategory(ctx, "nothing")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestLocalMissingRecordIsIgnored(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e, _ := newLocalEngine(t, storage.NewMemoryBackend())

	_, err := e.AddRecord(ctx, models.RecordInput{Title: "keep"})
	require.NoError(t, err)
	before := e.Records()

	updated, err := e.UpdateRecord(ctx, "missing", models.RecordUpdate{Title: models.StringPtr("x")})
	assert.NoError(t, err)
	assert.Nil(t, updated)

	assert.NoError(t, e.DeleteRecord(ctx, "missing"))
	assert.Equal(t, before, e.Records())
}

func TestLocalDeleteRecord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e, store := newLocalEngine(t, storage.NewMemoryBackend())

	a, err := e.AddRecord(ctx, models.RecordInput{Title: "a"})
	require.NoError(t, err)
	b, err := e.AddRecord(ctx, models.RecordInput{Title: "b"})
	require.NoError(t, err)

	require.NoError(t, e.DeleteRecord(ctx, a.ID))
	assert.Equal(t, []string{b.ID}, ids(e.Records()))
	assert.Equal(t, []string{b.ID}, ids(storage.Read(store, RecordsKey, []models.Record(nil))))

	_, ok := e.GetByID(a.ID)
	assert.False(t, ok)
}

func TestLocalUpdateKeepsTimestampsMonotonic(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e, _ := newLocalEngine(t, storage.NewMemoryBackend(), WithClock(frozenClock(at)))

	r, err := e.AddRecord(ctx, models.RecordInput{Title: "t"})
	require.NoError(t, err)

	previous := r.UpdatedAt
	for i := 0; i < 3; i++ {
		updated, err := e.UpdateRecord(ctx, r.ID, models.RecordUpdate{Content: models.StringPtr("c")})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.True(t, updated.UpdatedAt.After(previous))
		assert.Equal(t, at, updated.CreatedAt)
		previous = updated.UpdatedAt
	}
}

func TestLocalStorageFaultsDoNotBreakEngine(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := storage.NewMemoryBackend()
	backend.SetFault(errors.New("disk on fire"))

	e, _ := newLocalEngine(t, backend)
	assert.Empty(t, e.Records())

	r, err := e.AddRecord(ctx, models.RecordInput{Title: "still works"})
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID}, ids(e.Records()))
	require.NoError(t, e.AddCategory(ctx, "misc"))
	assert.Equal(t, []string{"misc"}, e.CustomCategories())
}

func TestLocalKeyPrefix(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := storage.NewMemoryBackend()

	alice, store := newLocalEngine(t, backend, WithKeyPrefix("alice"))
	bob, _ := newLocalEngine(t, backend, WithKeyPrefix("bob"))

	_, err := alice.AddRecord(ctx, models.RecordInput{Title: "mine"})
	require.NoError(t, err)

	assert.Len(t, alice.Records(), 1)
	require.NoError(t, bob.FetchRecords(ctx))
	assert.Empty(t, bob.Records())
	assert.Len(t, storage.Read(store, "alice."+RecordsKey, []models.Record(nil)), 1)
}

func TestFilterSetters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e, _ := newLocalEngine(t, storage.NewMemoryBackend())

	_, err := e.AddRecord(ctx, models.RecordInput{Title: "Grep", Category: "shell"})
	require.NoError(t, err)
	_, err = e.AddRecord(ctx, models.RecordInput{Title: "Log", Category: "git"})
	require.NoError(t, err)

	e.SetSearchQuery("GREP")
	assert.Equal(t, "GREP", e.SearchQuery())
	assert.Len(t, e.FilteredRecords(), 1)

	e.ClearSearch()
	assert.Empty(t, e.SearchQuery())
	assert.Len(t, e.FilteredRecords(), 2)

	e.SetActiveCategory("git")
	assert.Equal(t, "git", e.ActiveCategory())
	require.Len(t, e.FilteredRecords(), 1)
	assert.Equal(t, "Log", e.FilteredRecords()[0].Title)

	e.SetSearchQuery("grep")
	assert.Empty(t, e.FilteredRecords())

	e.ResetFilters()
	assert.Empty(t, e.SearchQuery())
	assert.Empty(t, e.ActiveCategory())
	assert.Len(t, e.FilteredRecords(), 2)

	assert.Equal(t, map[string]int{"shell": 1, "git": 1}, e.CategoryCounts())
	assert.Equal(t, []string{"git", "shell"}, e.Categories())
}

func TestSubscribe(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e, _ := newLocalEngine(t, storage.NewMemoryBackend())

	var mu sync.Mutex
	var views []View
	cancel := e.Subscribe(func(v View) {
		mu.Lock()
		views = append(views, v)
		mu.Unlock()
	})

	_, err := e.AddRecord(ctx, models.RecordInput{Title: "Grep", Category: "shell"})
	require.NoError(t, err)
	e.SetSearchQuery("zzz")

	mu.Lock()
	require.Len(t, views, 2)
	assert.Len(t, views[0].Records, 1)
	assert.Len(t, views[0].FilteredRecords, 1)
	assert.Equal(t, "zzz", views[1].SearchQuery)
	assert.Empty(t, views[1].FilteredRecords)
	assert.Equal(t, map[string]int{"shell": 1}, views[1].CategoryCounts)
	mu.Unlock()

	cancel()
	cancel()
	e.ClearSearch()

	mu.Lock()
	assert.Len(t, views, 2)
	mu.Unlock()
}

func TestViewIsASnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e, _ := newLocalEngine(t, storage.NewMemoryBackend())

	_, err := e.AddRecord(ctx, models.RecordInput{Title: "a"})
	require.NoError(t, err)

	v := e.View()
	v.Records[0].Title = "changed"
	assert.Equal(t, "a", e.Records()[0].Title)
}

func TestWatchExternalChanges(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dir := t.TempDir()

	watched, err := storage.NewFileBackend(dir, storage.WithQuietPeriod(20*time.Millisecond), storage.WithFileLogger(zerolog.Nop()))
	require.NoError(t, err)
	other, err := storage.NewFileBackend(dir, storage.WithFileLogger(zerolog.Nop()))
	require.NoError(t, err)

	e, _ := newLocalEngine(t, watched)
	require.NoError(t, e.WatchExternalChanges(ctx))

	writer, _ := newLocalEngine(t, other)
	_, err = writer.AddRecord(ctx, models.RecordInput{Title: "from elsewhere"})
	require.NoError(t, err)
	require.NoError(t, writer.AddCategory(ctx, "elsewhere"))

	require.Eventually(t, func() bool {
		return len(e.Records()) == 1 && len(e.CustomCategories()) == 1
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, "from elsewhere", e.Records()[0].Title)
}

func TestWatchExternalChangesUnsupported(t *testing.T) {
	t.Parallel()
	e, _ := newLocalEngine(t, storage.NewMemoryBackend())
	assert.Error(t, e.WatchExternalChanges(context.Background()))
}
