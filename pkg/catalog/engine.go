package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cheatsheets/pkg/errors"
	"cheatsheets/pkg/models"
	"cheatsheets/pkg/storage"
)

// Engine holds the catalog in memory and keeps it in step with its
// persistence. All methods are safe for concurrent use. In local mode
// mutations run one at a time so the store always mirrors the latest
// committed state; in remote mode concurrent calls race and the last
// response wins.
type Engine struct {
	persistence Persistence
	logger      zerolog.Logger
	serial      bool

	// writeMu orders local mutations from the state read through the store write
	writeMu sync.Mutex

	mu               sync.RWMutex
	records          []models.Record
	customCategories []string
	filter           Filter
	loading          int

	subsMu  sync.Mutex
	subs    map[int]func(View)
	nextSub int
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used for precondition and load messages
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates an engine over p with empty state. Call Load to populate it.
func New(p Persistence, opts ...Option) *Engine {
	_, serial := p.(serialMutator)
	e := &Engine{
		persistence:      p,
		logger:           log.Logger,
		serial:           serial,
		records:          []models.Record{},
		customCategories: []string{},
		subs:             make(map[int]func(View)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With().Str("component", "catalog").Str("mode", p.Mode()).Logger()
	return e
}

// NewRemote creates an engine backed by the catalog API. State stays empty
// until Load or FetchRecords is called.
func NewRemote(api CatalogAPI, opts ...Option) *Engine {
	return New(NewRemotePersistence(api), opts...)
}

// NewLocal creates an engine backed by the durable store and reads the
// stored catalog immediately
func NewLocal(store *storage.Store, opts ...Option) *Engine {
	e := New(NewLocalPersistence(store), opts...)
	if err := e.Load(context.Background()); err != nil {
		e.logger.Debug().Err(err).Msg("Initial load failed")
	}
	return e
}

// Mode reports "remote" or "local"
func (e *Engine) Mode() string {
	return e.persistence.Mode()
}

// Load reads records and then custom categories
func (e *Engine) Load(ctx context.Context) error {
	if err := e.FetchRecords(ctx); err != nil {
		return err
	}
	return e.FetchCategories(ctx)
}

// FetchRecords replaces the collection with the persisted one. On failure
// the current collection is kept and the error returned.
func (e *Engine) FetchRecords(ctx context.Context) error {
	e.beginLoading()
	defer e.endLoading()
	return e.fetchRecords(ctx)
}

func (e *Engine) fetchRecords(ctx context.Context) error {
	defer e.lockMutation()()

	records, err := e.persistence.FetchRecords(ctx)
	if err != nil {
		e.logger.Error().Err(err).Msg("Error fetching cheat sheets")
		return err
	}
	if records == nil {
		records = []models.Record{}
	}

	e.mu.Lock()
	e.records = records
	e.mu.Unlock()
	return nil
}

// FetchCategories replaces the custom categories with the persisted list
func (e *Engine) FetchCategories(ctx context.Context) error {
	if err := e.fetchCategories(ctx); err != nil {
		return err
	}
	e.notify()
	return nil
}

func (e *Engine) fetchCategories(ctx context.Context) error {
	defer e.lockMutation()()

	categories, err := e.persistence.FetchCategories(ctx)
	if err != nil {
		e.logger.Error().Err(err).Msg("Error fetching categories")
		return err
	}
	if categories == nil {
		categories = []string{}
	}

	e.mu.Lock()
	e.customCategories = categories
	e.mu.Unlock()
	return nil
}

// AddCategory registers a category. Blank names and names already
// registered are ignored.
func (e *Engine) AddCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	changed, err := e.addCategory(ctx, name)
	if changed {
		e.notify()
	}
	return err
}

func (e *Engine) addCategory(ctx context.Context, name string) (bool, error) {
	defer e.lockMutation()()

	e.mu.RLock()
	present := containsString(e.customCategories, name)
	current := append([]string(nil), e.customCategories...)
	e.mu.RUnlock()
	if present {
		return false, nil
	}

	categories, err := e.persistence.CreateCategory(ctx, name, current)
	if err != nil {
		e.logger.Error().Err(err).Str("category", name).Msg("Error adding category")
		return false, err
	}

	e.mu.Lock()
	e.customCategories = categories
	e.mu.Unlock()

	e.persistence.SaveCategories(categories)
	return true, nil
}

// DeleteCategory removes a category registration. It reports false when
// nothing was removed, which in remote mode includes a category that is
// still used by a record.
func (e *Engine) DeleteCategory(ctx context.Context, name string) (bool, error) {
	result, err := e.RemoveCategory(ctx, name, false)
	return result.Deleted, err
}

// ForceDeleteCategory removes a category together with all of its records
func (e *Engine) ForceDeleteCategory(ctx context.Context, name string) (bool, error) {
	result, err := e.RemoveCategory(ctx, name, true)
	return result.Deleted, err
}

// RemoveCategory deletes a category and reports the whole outcome,
// including whether a plain deletion was refused because records use it.
// The refusal is decided against the same state the deletion commits to.
func (e *Engine) RemoveCategory(ctx context.Context, name string, force bool) (CategoryDeletion, error) {
	if force {
		e.beginLoading()
		defer e.endLoading()
	}

	result, err := e.deleteCategory(ctx, name, force)
	if result.Deleted {
		e.notify()
	}
	return result, err
}

func (e *Engine) deleteCategory(ctx context.Context, name string, force bool) (CategoryDeletion, error) {
	defer e.lockMutation()()

	e.mu.RLock()
	current := models.Catalog{Records: e.records, CustomCategories: e.customCategories}.Clone()
	e.mu.RUnlock()

	result, err := e.persistence.DeleteCategory(ctx, name, force, current)
	if err != nil {
		e.logger.Error().Err(err).Str("category", name).Bool("force", force).Msg("Error deleting category")
		return CategoryDeletion{}, err
	}
	if !result.Deleted {
		e.logger.Debug().Str("category", name).Bool("force", force).Bool("in_use", result.InUse).Msg("Category not deleted")
		return result, nil
	}

	if result.Categories == nil {
		result.Categories = []string{}
	}

	e.mu.Lock()
	e.customCategories = result.Categories
	switch {
	case result.Records != nil:
		e.records = result.Records
	case result.Cascade:
		e.records = withoutCategory(e.records, name)
	}
	records := e.records
	e.mu.Unlock()

	e.persistence.SaveCategories(result.Categories)
	if result.Cascade {
		e.persistence.SaveRecords(records)
	}
	return result, nil
}

// AddRecord creates a record and places it at the front of the collection
func (e *Engine) AddRecord(ctx context.Context, in models.RecordInput) (models.Record, error) {
	record, err := e.addRecord(ctx, in)
	if err != nil {
		return models.Record{}, err
	}
	e.notify()
	return record, nil
}

func (e *Engine) addRecord(ctx context.Context, in models.RecordInput) (models.Record, error) {
	defer e.lockMutation()()

	record, err := e.persistence.CreateRecord(ctx, in)
	if err != nil {
		e.logger.Error().Err(err).Msg("Error adding cheat sheet")
		return models.Record{}, err
	}

	e.mu.Lock()
	records := make([]models.Record, 0, len(e.records)+1)
	records = append(records, record)
	records = append(records, e.records...)
	e.records = records
	e.mu.Unlock()

	e.persistence.SaveRecords(records)
	return record, nil
}

// UpdateRecord applies the provided fields to the record with id. In local
// mode an unknown id is logged and nil is returned without error.
func (e *Engine) UpdateRecord(ctx context.Context, id string, upd models.RecordUpdate) (*models.Record, error) {
	record, changed, err := e.updateRecord(ctx, id, upd)
	if changed {
		e.notify()
	}
	return record, err
}

func (e *Engine) updateRecord(ctx context.Context, id string, upd models.RecordUpdate) (*models.Record, bool, error) {
	defer e.lockMutation()()

	current, _ := e.lookup(id)

	record, err := e.persistence.UpdateRecord(ctx, id, current, upd)
	if err != nil {
		if errors.IsType(err, errors.ErrTypePrecondition) {
			e.logger.Warn().Err(err).Str("id", id).Msg("Cheat sheet not found for update")
			return nil, false, nil
		}
		e.logger.Error().Err(err).Str("id", id).Msg("Error updating cheat sheet")
		return nil, false, err
	}

	e.mu.Lock()
	index := indexOf(e.records, id)
	if index < 0 {
		e.mu.Unlock()
		return &record, false, nil
	}
	records := append([]models.Record(nil), e.records...)
	records[index] = record
	e.records = records
	e.mu.Unlock()

	e.persistence.SaveRecords(records)
	return &record, true, nil
}

// DeleteRecord removes the record with id. In local mode an unknown id is
// logged and ignored.
func (e *Engine) DeleteRecord(ctx context.Context, id string) error {
	changed, err := e.deleteRecord(ctx, id)
	if changed {
		e.notify()
	}
	return err
}

func (e *Engine) deleteRecord(ctx context.Context, id string) (bool, error) {
	defer e.lockMutation()()

	current, _ := e.lookup(id)

	if err := e.persistence.DeleteRecord(ctx, id, current); err != nil {
		if errors.IsType(err, errors.ErrTypePrecondition) {
			e.logger.Warn().Err(err).Str("id", id).Msg("Cheat sheet not found for delete")
			return false, nil
		}
		e.logger.Error().Err(err).Str("id", id).Msg("Error deleting cheat sheet")
		return false, err
	}

	e.mu.Lock()
	index := indexOf(e.records, id)
	if index < 0 {
		e.mu.Unlock()
		return false, nil
	}
	records := make([]models.Record, 0, len(e.records)-1)
	records = append(records, e.records[:index]...)
	records = append(records, e.records[index+1:]...)
	e.records = records
	e.mu.Unlock()

	e.persistence.SaveRecords(records)
	return true, nil
}

// SetSearchQuery sets the free-text filter
func (e *Engine) SetSearchQuery(query string) {
	e.mu.Lock()
	e.filter.Query = query
	e.mu.Unlock()
	e.notify()
}

// ClearSearch empties the free-text filter
func (e *Engine) ClearSearch() {
	e.SetSearchQuery("")
}

// SetActiveCategory restricts results to one category; "" lifts the restriction
func (e *Engine) SetActiveCategory(category string) {
	e.mu.Lock()
	e.filter.Category = category
	e.mu.Unlock()
	e.notify()
}

// ResetFilters clears both the query and the active category
func (e *Engine) ResetFilters() {
	e.mu.Lock()
	e.filter = Filter{}
	e.mu.Unlock()
	e.notify()
}

// Records returns a copy of the collection, newest first
func (e *Engine) Records() []models.Record {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]models.Record{}, e.records...)
}

// CustomCategories returns a copy of the registered categories
func (e *Engine) CustomCategories() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string{}, e.customCategories...)
}

// SearchQuery returns the free-text filter
func (e *Engine) SearchQuery() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.filter.Query
}

// ActiveCategory returns the category filter, "" when none is set
func (e *Engine) ActiveCategory() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.filter.Category
}

// IsLoading reports whether a fetch or forced deletion is in flight
func (e *Engine) IsLoading() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loading > 0
}

// FilteredRecords applies the current filters to the collection
func (e *Engine) FilteredRecords() []models.Record {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return FilterRecords(e.records, e.filter)
}

// Categories lists record and custom categories, sorted and deduplicated
func (e *Engine) Categories() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Categories(e.records, e.customCategories)
}

// CategoryCounts counts records per category over the whole collection
func (e *Engine) CategoryCounts() map[string]int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return CategoryCounts(e.records)
}

// GetByID finds a record in memory
func (e *Engine) GetByID(id string) (models.Record, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if i := indexOf(e.records, id); i >= 0 {
		return e.records[i], true
	}
	return models.Record{}, false
}

// View returns a consistent snapshot with all derived views
func (e *Engine) View() View {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return buildView(e.records, e.customCategories, e.filter, e.loading > 0)
}

// Subscribe registers fn to receive a View after every committed change.
// fn runs on the goroutine that made the change. The returned function
// removes the subscription.
func (e *Engine) Subscribe(fn func(View)) (cancel func()) {
	e.subsMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.subsMu.Lock()
			delete(e.subs, id)
			e.subsMu.Unlock()
		})
	}
}

// WatchExternalChanges reloads state whenever another process writes the
// catalog keys, until ctx is done. It fails when the persistence cannot
// observe changes.
func (e *Engine) WatchExternalChanges(ctx context.Context) error {
	watcher, ok := e.persistence.(changeWatcher)
	if !ok {
		return fmt.Errorf("%s persistence cannot watch for changes", e.persistence.Mode())
	}
	return watcher.Watch(ctx,
		func() {
			e.logger.Debug().Msg("Cheat sheets changed externally, reloading")
			if err := e.FetchRecords(ctx); err != nil {
				e.logger.Debug().Err(err).Msg("Reload of cheat sheets failed")
			}
		},
		func() {
			e.logger.Debug().Msg("Categories changed externally, reloading")
			if err := e.FetchCategories(ctx); err != nil {
				e.logger.Debug().Err(err).Msg("Reload of categories failed")
			}
		},
	)
}

// lockMutation takes the mutation lock when the persistence needs it and
// returns the matching unlock
func (e *Engine) lockMutation() func() {
	if !e.serial {
		return func() {}
	}
	e.writeMu.Lock()
	return e.writeMu.Unlock
}

func (e *Engine) lookup(id string) (*models.Record, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if i := indexOf(e.records, id); i >= 0 {
		record := e.records[i]
		return &record, true
	}
	return nil, false
}

func (e *Engine) beginLoading() {
	e.mu.Lock()
	e.loading++
	e.mu.Unlock()
	e.notify()
}

func (e *Engine) endLoading() {
	e.mu.Lock()
	if e.loading > 0 {
		e.loading--
	}
	e.mu.Unlock()
	e.notify()
}

func (e *Engine) notify() {
	e.subsMu.Lock()
	if len(e.subs) == 0 {
		e.subsMu.Unlock()
		return
	}
	subs := make([]func(View), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.subsMu.Unlock()

	view := e.View()
	for _, fn := range subs {
		fn(view)
	}
}
