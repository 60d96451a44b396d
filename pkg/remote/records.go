package remote

import (
	"context"
	"net/http"
	"net/url"

	"cheatsheets/pkg/models"
)

func recordPath(id string) string {
	return "/cheat-sheets/" + url.PathEscape(id)
}

// ListRecords returns every record the caller can see, newest first
func (c *Client) ListRecords(ctx context.Context) ([]models.Record, error) {
	records := []models.Record{}
	err := c.do(ctx, call{
		op:     "list_records",
		method: http.MethodGet,
		path:   "/cheat-sheets",
		out:    &records,
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// GetRecord fetches one record by id
func (c *Client) GetRecord(ctx context.Context, id string) (models.Record, error) {
	var record models.Record
	err := c.do(ctx, call{
		op:     "get_record",
		method: http.MethodGet,
		path:   recordPath(id),
		out:    &record,
	})
	return record, err
}

// CreateRecord creates a record; the server assigns id and timestamps
func (c *Client) CreateRecord(ctx context.Context, in models.RecordInput) (models.Record, error) {
	var record models.Record
	err := c.do(ctx, call{
		op:     "create_record",
		method: http.MethodPost,
		path:   "/cheat-sheets",
		body:   in,
		out:    &record,
	})
	return record, err
}

// UpdateRecord applies a partial update and returns the server's record
func (c *Client) UpdateRecord(ctx context.Context, id string, upd models.RecordUpdate) (models.Record, error) {
	var record models.Record
	err := c.do(ctx, call{
		op:     "update_record",
		method: http.MethodPut,
		path:   recordPath(id),
		body:   upd,
		out:    &record,
	})
	return record, err
}

// DeleteRecord deletes a record by id
func (c *Client) DeleteRecord(ctx context.Context, id string) error {
	return c.do(ctx, call{
		op:     "delete_record",
		method: http.MethodDelete,
		path:   recordPath(id),
	})
}
