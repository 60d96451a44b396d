package catalog

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cheatsheets/pkg/errors"
	"cheatsheets/pkg/models"
	"cheatsheets/pkg/remote"
)

// fakeAPI is an in-memory catalog server that records every call
type fakeAPI struct {
	mu         sync.Mutex
	records    []models.Record
	categories []string
	calls      []string
	fail       error
	nextID     int
}

func (f *fakeAPI) call(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.fail
}

func (f *fakeAPI) setFailure(err error) {
	f.mu.Lock()
	f.fail = err
	f.mu.Unlock()
}

func (f *fakeAPI) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) ListRecords(context.Context) ([]models.Record, error) {
	if err := f.call("ListRecords"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Record{}, f.records...), nil
}

func (f *fakeAPI) CreateRecord(_ context.Context, in models.RecordInput) (models.Record, error) {
	if err := f.call("CreateRecord"); err != nil {
		return models.Record{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	now := time.Now().UTC()
	r := models.Record{
		ID:        "srv-" + strconv.Itoa(f.nextID),
		Title:     in.Title,
		Category:  in.Category,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.records = append([]models.Record{r}, f.records...)
	return r, nil
}

func (f *fakeAPI) UpdateRecord(_ context.Context, id string, upd models.RecordUpdate) (models.Record, error) {
	if err := f.call("UpdateRecord"); err != nil {
		return models.Record{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.records {
		if r.ID == id {
			next := upd.ApplyTo(r)
			next.UpdatedAt = r.UpdatedAt.Add(time.Second)
			f.records[i] = next
			return next, nil
		}
	}
	return models.Record{}, &remote.APIError{Op: "update", StatusCode: http.StatusNotFound, Message: "Cheat sheet not found", Category: remote.Irrecoverable}
}

func (f *fakeAPI) DeleteRecord(_ context.Context, id string) error {
	if err := f.call("DeleteRecord"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = withoutID(f.records, id)
	return nil
}

func (f *fakeAPI) ListCategories(context.Context) ([]string, error) {
	if err := f.call("ListCategories"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.categories...), nil
}

func (f *fakeAPI) CreateCategory(_ context.Context, name string) error {
	if err := f.call("CreateCategory"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories = append(f.categories, name)
	return nil
}

func (f *fakeAPI) DeleteCategory(_ context.Context, name string, force bool) error {
	if err := f.call("DeleteCategory"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.categories[:0]
	for _, c := range f.categories {
		if c != name {
			out = append(out, c)
		}
	}
	f.categories = out
	if force {
		f.records = withoutCategory(f.records, name)
	}
	return nil
}

func withoutID(records []models.Record, id string) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

func newRemoteEngine(t *testing.T, api *fakeAPI) *Engine {
	t.Helper()
	e := NewRemote(api, WithLogger(zerolog.Nop()))
	require.NoError(t, e.Load(context.Background()))
	return e
}

var errUnavailable = &remote.APIError{Op: "list", Message: "connection refused", Category: remote.Recoverable}

func TestRemoteLoad(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{
		records:    []models.Record{{ID: "a", Title: "ls", Category: "shell"}},
		categories: []string{"shell", "git"},
	}
	e := newRemoteEngine(t, api)

	assert.Equal(t, "remote", e.Mode())
	assert.Equal(t, []string{"a"}, ids(e.Records()))
	assert.Equal(t, []string{"shell", "git"}, e.CustomCategories())
	assert.False(t, e.IsLoading())
	assert.Equal(t, []string{"ListRecords", "ListCategories"}, api.callLog())
}

func TestRemoteFetchFailureKeepsState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := &fakeAPI{records: []models.Record{{ID: "a"}}, categories: []string{"x"}}
	e := newRemoteEngine(t, api)

	api.setFailure(errUnavailable)
	err := e.FetchRecords(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeRemote))
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.True(t, appErr.IsRetryable())
	assert.Equal(t, errors.DefaultMessage, appErr.GetUserMessage())

	assert.Error(t, e.FetchCategories(ctx))
	assert.Equal(t, []string{"a"}, ids(e.Records()))
	assert.Equal(t, []string{"x"}, e.CustomCategories())
	assert.False(t, e.IsLoading(), "loading must be restored after a failure")
}

func TestRemoteLoadingFlagDuringFetch(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{}
	e := NewRemote(api, WithLogger(zerolog.Nop()))

	var mu sync.Mutex
	var flags []bool
	e.Subscribe(func(v View) {
		mu.Lock()
		flags = append(flags, v.IsLoading)
		mu.Unlock()
	})

	require.NoError(t, e.FetchRecords(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, flags)
	assert.True(t, flags[0])
	assert.False(t, flags[len(flags)-1])
}

func TestRemoteAddCategory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := &fakeAPI{categories: []string{"git"}}
	e := newRemoteEngine(t, api)

	require.NoError(t, e.AddCategory(ctx, " shell "))
	assert.Equal(t, []string{"git", "shell"}, e.CustomCategories())

	require.NoError(t, e.AddCategory(ctx, "shell"))
	require.NoError(t, e.AddCategory(ctx, ""))
	assert.Equal(t, []string{"ListRecords", "ListCategories", "CreateCategory", "ListCategories"}, api.callLog())
}

func TestRemoteDeleteCategoryInUseIsRefused(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := &fakeAPI{
		records:    []models.Record{{ID: "a", Category: "shell"}},
		categories: []string{"shell"},
	}
	e := newRemoteEngine(t, api)
	callsBefore := len(api.callLog())

	deleted, err := e.DeleteCategory(ctx, "shell")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Len(t, api.callLog(), callsBefore, "server must not be contacted")
	assert.Equal(t, []string{"shell"}, e.CustomCategories())

	result, err := e.RemoveCategory(ctx, "shell", false)
	require.NoError(t, err)
	assert.True(t, result.InUse)
	assert.Len(t, api.callLog(), callsBefore)
}

func TestRemoteDeleteCategory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := &fakeAPI{categories: []string{"shell", "git"}}
	e := newRemoteEngine(t, api)

	deleted, err := e.DeleteCategory(ctx, "shell")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []string{"git"}, e.CustomCategories())
}

func TestRemoteForceDeleteCategory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := &fakeAPI{
		records: []models.Record{
			{ID: "a", Category: "shell"},
			{ID: "b", Category: "git"},
		},
		categories: []string{"shell", "git"},
	}
	e := newRemoteEngine(t, api)

	deleted, err := e.ForceDeleteCategory(ctx, "shell")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []string{"git"}, e.CustomCategories())
	assert.Equal(t, []string{"b"}, ids(e.Records()))
	assert.False(t, e.IsLoading())
	assert.Equal(t, []string{"DeleteCategory", "ListCategories", "ListRecords"}, api.callLog()[2:])
}

func TestRemoteDeleteCategoryFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := &fakeAPI{categories: []string{"shell"}}
	e := newRemoteEngine(t, api)

	api.setFailure(&remote.APIError{Op: "delete", StatusCode: http.StatusInternalServerError, Message: "boom"})
	deleted, err := e.DeleteCategory(ctx, "shell")
	require.Error(t, err)
	assert.False(t, deleted)
	assert.Equal(t, []string{"shell"}, e.CustomCategories())

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, "boom", appErr.GetUserMessage())
}

func TestRemoteRecordLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := &fakeAPI{records: []models.Record{{ID: "old", Title: "old"}}}
	e := newRemoteEngine(t, api)

	created, err := e.AddRecord(ctx, models.RecordInput{Title: "Grep", Category: "shell", Content: "grep -r"})
	require.NoError(t, err)
	assert.Equal(t, []string{created.ID, "old"}, ids(e.Records()))

	updated, err := e.UpdateRecord(ctx, created.ID, models.RecordUpdate{Title: models.StringPtr("Grep basics")})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Grep basics", updated.Title)
	assert.Equal(t, "shell", updated.Category)
	got, ok := e.GetByID(created.ID)
	require.True(t, ok)
	assert.Equal(t, *updated, got)
	assert.Equal(t, created.ID, e.Records()[0].ID, "update keeps the position")

	require.NoError(t, e.DeleteRecord(ctx, created.ID))
	assert.Equal(t, []string{"old"}, ids(e.Records()))
}

func TestRemoteUpdateOfRecordNotHeldLocally(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := &fakeAPI{}
	e := newRemoteEngine(t, api)

	api.mu.Lock()
	api.records = []models.Record{{ID: "elsewhere", Title: "before"}}
	api.mu.Unlock()

	updated, err := e.UpdateRecord(ctx, "elsewhere", models.RecordUpdate{Title: models.StringPtr("after")})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "after", updated.Title)
	assert.Empty(t, e.Records())

	require.NoError(t, e.DeleteRecord(ctx, "elsewhere"))
	assert.Contains(t, api.callLog(), "DeleteRecord")
}

func TestRemoteMutationFailuresLeaveStateUnchanged(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := &fakeAPI{records: []models.Record{{ID: "a", Title: "keep", Category: "shell"}}}
	e := newRemoteEngine(t, api)
	before := e.View()

	api.setFailure(errUnavailable)

	_, err := e.AddRecord(ctx, models.RecordInput{Title: "new"})
	assert.Error(t, err)
	_, err = e.UpdateRecord(ctx, "a", models.RecordUpdate{Title: models.StringPtr("x")})
	assert.Error(t, err)
	assert.Error(t, e.DeleteRecord(ctx, "a"))
	assert.Error(t, e.AddCategory(ctx, "new"))
	_, err = e.ForceDeleteCategory(ctx, "shell")
	assert.Error(t, err)

	assert.Equal(t, before, e.View())
}

func TestRemoteUpdateNotFoundPropagates(t *testing.T) {
	t.Parallel()
	e := newRemoteEngine(t, &fakeAPI{})

	_, err := e.UpdateRecord(context.Background(), "missing", models.RecordUpdate{Title: models.StringPtr("x")})
	require.Error(t, err)
	assert.True(t, remote.IsNotFound(err))
}

func TestRemoteWatchUnsupported(t *testing.T) {
	t.Parallel()
	e := newRemoteEngine(t, &fakeAPI{})
	assert.Error(t, e.WatchExternalChanges(context.Background()))
}
