package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"catalogadmin/internal/models"
)

type SchemaListOptions struct {
	All         bool
	DeletedOnly bool
}

func (c *Client) ListSchemas(ctx context.Context, opts SchemaListOptions) ([]models.Schema, error) {
	q := url.Values{}
	q.Set("all", strconv.FormatBool(opts.All))
	q.Set("deleted_only", strconv.FormatBool(opts.DeletedOnly))
	var out []models.Schema
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/schema", Query: q}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSchema(ctx context.Context, slugOrID string) (models.Schema, error) {
	var out models.Schema
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/schema/" + url.PathEscape(slugOrID)}, &out); err != nil {
		return models.Schema{}, err
	}
	return out, nil
}

// CreateSchema submits a new schema definition. The attribute payload
// stays schema-shaped JSON; its validation is the backend's business.
func (c *Client) CreateSchema(ctx context.Context, draft map[string]any) (models.Schema, error) {
	var out models.Schema
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/schema", Body: draft}, &out); err != nil {
		return models.Schema{}, err
	}
	c.alerts.Success("Schema created: " + out.Name)
	return out, nil
}

func (c *Client) UpdateSchema(ctx context.Context, slugOrID string, draft map[string]any) (models.Schema, error) {
	var out models.Schema
	if err := c.Do(ctx, Request{Method: http.MethodPut, Path: "/schema/" + url.PathEscape(slugOrID), Body: draft}, &out); err != nil {
		return models.Schema{}, err
	}
	c.alerts.Success("Schema updated: " + out.Name)
	return out, nil
}

func (c *Client) DeleteSchema(ctx context.Context, slugOrID string) (models.Schema, error) {
	var out models.Schema
	if err := c.Do(ctx, Request{Method: http.MethodDelete, Path: "/schema/" + url.PathEscape(slugOrID)}, &out); err != nil {
		return models.Schema{}, err
	}
	c.alerts.Success("Schema deleted: " + out.Name)
	return out, nil
}
