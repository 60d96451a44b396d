package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cheatsheets/pkg/errors"
	"cheatsheets/pkg/models"
	"cheatsheets/pkg/storage"
	"cheatsheets/pkg/utils"
)

// Durable slot keys used in local mode
const (
	RecordsKey    = "cheat-sheets"
	CategoriesKey = "custom-categories"
)

// LocalPersistence keeps the catalog in the durable store. It never fails
// on storage faults; the store absorbs them.
type LocalPersistence struct {
	store         *storage.Store
	recordsKey    string
	categoriesKey string
	records       storage.Slot[[]models.Record]
	categories    storage.Slot[[]string]
	now           func() time.Time
	newID         func() string
	refuseInUse   bool
}

// LocalOption configures LocalPersistence
type LocalOption func(*LocalPersistence)

// WithClock overrides the time source used for record timestamps
func WithClock(now func() time.Time) LocalOption {
	return func(p *LocalPersistence) { p.now = now }
}

// WithIDGenerator overrides how new record ids are made
func WithIDGenerator(newID func() string) LocalOption {
	return func(p *LocalPersistence) { p.newID = newID }
}

// WithKeyPrefix namespaces both slots, e.g. per user on a shared backend
func WithKeyPrefix(prefix string) LocalOption {
	return func(p *LocalPersistence) {
		p.recordsKey = prefix + "." + RecordsKey
		p.categoriesKey = prefix + "." + CategoriesKey
	}
}

// WithInUseRefusal makes a plain DeleteCategory refuse while any record
// still uses the category, as the remote API does
func WithInUseRefusal() LocalOption {
	return func(p *LocalPersistence) { p.refuseInUse = true }
}

// NewLocalPersistence binds the catalog slots of store
func NewLocalPersistence(store *storage.Store, opts ...LocalOption) *LocalPersistence {
	p := &LocalPersistence{
		store:         store,
		recordsKey:    RecordsKey,
		categoriesKey: CategoriesKey,
		now:           func() time.Time { return time.Now().UTC() },
		newID:         utils.NewID,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.records = storage.NewSlot(store, p.recordsKey, []models.Record{})
	p.categories = storage.NewSlot(store, p.categoriesKey, []string{})
	return p
}

// Mode implements Persistence
func (p *LocalPersistence) Mode() string { return "local" }

func (p *LocalPersistence) serializesMutations() {}

// FetchRecords reads the records slot
func (p *LocalPersistence) FetchRecords(context.Context) ([]models.Record, error) {
	return p.records.Get(), nil
}

// FetchCategories reads the categories slot
func (p *LocalPersistence) FetchCategories(context.Context) ([]string, error) {
	return p.categories.Get(), nil
}

// CreateCategory inserts the name and keeps the list sorted
func (p *LocalPersistence) CreateCategory(_ context.Context, name string, current []string) ([]string, error) {
	next := make([]string, 0, len(current)+1)
	next = append(next, current...)
	next = append(next, name)
	sort.Strings(next)
	return next, nil
}

// DeleteCategory removes the registration. Records keep their category
// string unless force is set, in which case they are removed as well.
// With WithInUseRefusal a plain deletion of a used category is refused.
func (p *LocalPersistence) DeleteCategory(_ context.Context, name string, force bool, current models.Catalog) (CategoryDeletion, error) {
	if !force && p.refuseInUse && usesCategory(current.Records, name) {
		return CategoryDeletion{InUse: true}, nil
	}

	index := -1
	for i, c := range current.CustomCategories {
		if c == name {
			index = i
			break
		}
	}

	next := make([]string, 0, len(current.CustomCategories))
	next = append(next, current.CustomCategories...)
	if index >= 0 {
		next = append(next[:index], next[index+1:]...)
	}

	if !force {
		if index < 0 {
			return CategoryDeletion{}, nil
		}
		return CategoryDeletion{Deleted: true, Categories: next}, nil
	}

	if index < 0 && !usesCategory(current.Records, name) {
		return CategoryDeletion{}, nil
	}
	return CategoryDeletion{Deleted: true, Categories: next, Cascade: true}, nil
}

// CreateRecord builds a record with a fresh id and matching timestamps
func (p *LocalPersistence) CreateRecord(_ context.Context, in models.RecordInput) (models.Record, error) {
	now := p.now()
	return models.Record{
		ID:          p.newID(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Content:     in.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdateRecord merges the provided fields over the current record,
// keeping id and createdAt and moving updatedAt forward
func (p *LocalPersistence) UpdateRecord(_ context.Context, id string, current *models.Record, upd models.RecordUpdate) (models.Record, error) {
	if current == nil {
		return models.Record{}, errors.ErrRecordNotFound.WithContext("id", id)
	}

	next := upd.ApplyTo(*current)
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = p.now()
	if !next.UpdatedAt.After(current.UpdatedAt) {
		next.UpdatedAt = current.UpdatedAt.Add(time.Nanosecond)
	}
	return next, nil
}

// DeleteRecord only checks that the record exists; the engine removes it
func (p *LocalPersistence) DeleteRecord(_ context.Context, id string, current *models.Record) error {
	if current == nil {
		return errors.ErrRecordNotFound.WithContext("id", id)
	}
	return nil
}

// SaveRecords mirrors the records slot
func (p *LocalPersistence) SaveRecords(records []models.Record) {
	p.records.Set(records)
}

// SaveCategories mirrors the categories slot
func (p *LocalPersistence) SaveCategories(categories []string) {
	p.categories.Set(categories)
}

// Watch reloads on writes made to the catalog slots by another process.
// It needs a backend that implements storage.Watcher.
func (p *LocalPersistence) Watch(ctx context.Context, onRecords, onCategories func()) error {
	watcher, ok := p.store.Backend().(storage.Watcher)
	if !ok {
		return fmt.Errorf("storage backend %T cannot watch for changes", p.store.Backend())
	}
	return watcher.Watch(ctx, func(key string) {
		switch key {
		case p.recordsKey:
			onRecords()
		case p.categoriesKey:
			onCategories()
		}
	})
}
