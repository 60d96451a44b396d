package catalog

import (
	"context"
	stderrors "errors"

	"cheatsheets/pkg/errors"
	"cheatsheets/pkg/models"
	"cheatsheets/pkg/remote"
)

// CatalogAPI is the subset of the remote client the engine needs
type CatalogAPI interface {
	ListRecords(ctx context.Context) ([]models.Record, error)
	CreateRecord(ctx context.Context, in models.RecordInput) (models.Record, error)
	UpdateRecord(ctx context.Context, id string, upd models.RecordUpdate) (models.Record, error)
	DeleteRecord(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]string, error)
	CreateCategory(ctx context.Context, name string) error
	DeleteCategory(ctx context.Context, name string, force bool) error
}

var _ CatalogAPI = (*remote.Client)(nil)

// RemotePersistence treats the catalog API as the source of truth
type RemotePersistence struct {
	api CatalogAPI
}

// NewRemotePersistence wraps a catalog API client
func NewRemotePersistence(api CatalogAPI) *RemotePersistence {
	return &RemotePersistence{api: api}
}

// Mode implements Persistence
func (p *RemotePersistence) Mode() string { return "remote" }

func remoteFailure(err error, code, message string) error {
	userMessage := remoteMessage(err)
	if userMessage == "" {
		userMessage = errors.DefaultMessage
	}
	appErr := errors.Wrap(err, errors.ErrTypeRemote, code, message).
		WithUserMessage(userMessage)
	if remote.IsRecoverable(err) {
		appErr = appErr.WithRetryable(true)
	}
	return appErr
}

func remoteMessage(err error) string {
	var apiErr *remote.APIError
	if stderrors.As(err, &apiErr) && apiErr.StatusCode > 0 {
		return apiErr.Message
	}
	return ""
}

// FetchRecords lists every record on the server
func (p *RemotePersistence) FetchRecords(ctx context.Context) ([]models.Record, error) {
	records, err := p.api.ListRecords(ctx)
	if err != nil {
		return nil, remoteFailure(err, "FETCH_RECORDS_FAILED", "failed to fetch cheat sheets")
	}
	return records, nil
}

// FetchCategories lists the server's registered categories
func (p *RemotePersistence) FetchCategories(ctx context.Context) ([]string, error) {
	names, err := p.api.ListCategories(ctx)
	if err != nil {
		return nil, remoteFailure(err, "FETCH_CATEGORIES_FAILED", "failed to fetch categories")
	}
	return names, nil
}

// CreateCategory creates the category and re-reads the authoritative list
func (p *RemotePersistence) CreateCategory(ctx context.Context, name string, _ []string) ([]string, error) {
	if err := p.api.CreateCategory(ctx, name); err != nil {
		return nil, remoteFailure(err, "ADD_CATEGORY_FAILED", "failed to add category")
	}
	return p.FetchCategories(ctx)
}

// DeleteCategory refuses a plain deletion while any in-memory record uses
// the category. A forced deletion lets the server cascade and then
// re-reads both categories and records.
func (p *RemotePersistence) DeleteCategory(ctx context.Context, name string, force bool, current models.Catalog) (CategoryDeletion, error) {
	if !force && usesCategory(current.Records, name) {
		return CategoryDeletion{InUse: true}, nil
	}

	if err := p.api.DeleteCategory(ctx, name, force); err != nil {
		return CategoryDeletion{}, remoteFailure(err, "DELETE_CATEGORY_FAILED", "failed to delete category")
	}

	categories, err := p.FetchCategories(ctx)
	if err != nil {
		return CategoryDeletion{}, err
	}
	out := CategoryDeletion{Deleted: true, Categories: categories}

	if force {
		records, err := p.FetchRecords(ctx)
		if err != nil {
			return CategoryDeletion{}, err
		}
		out.Records = records
	}
	return out, nil
}

// CreateRecord creates the record on the server
func (p *RemotePersistence) CreateRecord(ctx context.Context, in models.RecordInput) (models.Record, error) {
	record, err := p.api.CreateRecord(ctx, in)
	if err != nil {
		return models.Record{}, remoteFailure(err, "ADD_RECORD_FAILED", "failed to add cheat sheet")
	}
	return record, nil
}

// UpdateRecord sends the update whether or not the record is held locally
func (p *RemotePersistence) UpdateRecord(ctx context.Context, id string, _ *models.Record, upd models.RecordUpdate) (models.Record, error) {
	record, err := p.api.UpdateRecord(ctx, id, upd)
	if err != nil {
		return models.Record{}, remoteFailure(err, "UPDATE_RECORD_FAILED", "failed to update cheat sheet")
	}
	return record, nil
}

// DeleteRecord deletes on the server whether or not the record is held locally
func (p *RemotePersistence) DeleteRecord(ctx context.Context, id string, _ *models.Record) error {
	if err := p.api.DeleteRecord(ctx, id); err != nil {
		return remoteFailure(err, "DELETE_RECORD_FAILED", "failed to delete cheat sheet")
	}
	return nil
}

// SaveRecords is a no-op; the server already holds the state
func (p *RemotePersistence) SaveRecords([]models.Record) {}

// SaveCategories is a no-op; the server already holds the state
func (p *RemotePersistence) SaveCategories([]string) {}
