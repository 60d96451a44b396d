package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ListCategories returns the registered category names
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	names := []string{}
	err := c.do(ctx, call{
		op:     "list_categories",
		method: http.MethodGet,
		path:   "/categories",
		out:    &names,
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// CreateCategory registers a category name
func (c *Client) CreateCategory(ctx context.Context, name string) error {
	return c.do(ctx, call{
		op:     "create_category",
		method: http.MethodPost,
		path:   "/categories",
		body:   map[string]string{"name": name},
	})
}

// DeleteCategory removes a category. Without force the server refuses
// while records use it; with force it deletes those records too.
func (c *Client) DeleteCategory(ctx context.Context, name string, force bool) error {
	return c.do(ctx, call{
		op:     "delete_category",
		method: http.MethodDelete,
		path:   "/categories/" + url.PathEscape(name),
		query:  map[string]string{"force": strconv.FormatBool(force)},
	})
}
