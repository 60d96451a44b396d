package catalog

import (
	"context"

	"cheatsheets/pkg/models"
)

// Persistence is where the engine's state comes from and goes to. The
// engine never holds its state lock while calling it and commits the
// returned values to its in-memory state afterwards.
type Persistence interface {
	// Mode names the strategy, "remote" or "local"
	Mode() string

	FetchRecords(ctx context.Context) ([]models.Record, error)
	FetchCategories(ctx context.Context) ([]string, error)

	// CreateCategory registers a trimmed, not yet present name and returns
	// the resulting custom category list
	CreateCategory(ctx context.Context, name string, current []string) ([]string, error)
	DeleteCategory(ctx context.Context, name string, force bool, current models.Catalog) (CategoryDeletion, error)

	CreateRecord(ctx context.Context, in models.RecordInput) (models.Record, error)
	// UpdateRecord receives the in-memory record, or nil when it is not held locally
	UpdateRecord(ctx context.Context, id string, current *models.Record, upd models.RecordUpdate) (models.Record, error)
	DeleteRecord(ctx context.Context, id string, current *models.Record) error

	// SaveRecords and SaveCategories mirror committed state; remote mode ignores them
	SaveRecords(records []models.Record)
	SaveCategories(categories []string)
}

// CategoryDeletion describes the state change produced by a category deletion
type CategoryDeletion struct {
	// Deleted is false when the deletion was refused or there was nothing to delete
	Deleted bool
	// InUse is set when a plain deletion was refused because records use the category
	InUse bool
	// Categories replaces the custom category list when Deleted is set
	Categories []string
	// Records replaces the whole collection when non-nil
	Records []models.Record
	// Cascade drops every in-memory record of the category
	Cascade bool
}

// changeWatcher is implemented by persistence that can observe writes
// made by another process
type changeWatcher interface {
	Watch(ctx context.Context, onRecords, onCategories func()) error
}

// serialMutator is implemented by persistence whose mutations must run one
// at a time, from reading engine state through mirroring it
type serialMutator interface {
	serializesMutations()
}
