package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"catalogadmin/internal/models"
)

// EntityListOptions enumerates every listing knob; zero values are
// sent as-is, so start from DefaultEntityListOptions for the backend's
// documented defaults.
type EntityListOptions struct {
	Limit       int
	Offset      int
	All         bool
	AllFields   bool
	DeletedOnly bool
	OrderBy     string
	Ascending   bool
	Filters     map[string]string
}

func DefaultEntityListOptions() EntityListOptions {
	return EntityListOptions{Limit: 10, OrderBy: "name", Ascending: true}
}

func (o EntityListOptions) query() url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(o.Limit))
	q.Set("offset", strconv.Itoa(o.Offset))
	q.Set("all", strconv.FormatBool(o.All))
	q.Set("all_fields", strconv.FormatBool(o.AllFields))
	q.Set("deletedOnly", strconv.FormatBool(o.DeletedOnly))
	q.Set("order_by", o.OrderBy)
	q.Set("ascending", strconv.FormatBool(o.Ascending))
	for k, v := range o.Filters {
		q.Set(k, v)
	}
	return q
}

func (c *Client) ListEntities(ctx context.Context, schemaSlug string, opts EntityListOptions) ([]models.Entity, error) {
	var out []models.Entity
	req := Request{
		Method: http.MethodGet,
		Path:   "/entity/" + url.PathEscape(schemaSlug),
		Query:  opts.query(),
	}
	if err := c.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetEntity(ctx context.Context, schemaSlug, idOrSlug string) (models.Entity, error) {
	var out models.Entity
	path := fmt.Sprintf("/entity/%s/%s", url.PathEscape(schemaSlug), url.PathEscape(idOrSlug))
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: path}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateEntity(ctx context.Context, schemaSlug string, entity models.Entity) (models.Entity, error) {
	var out models.Entity
	req := Request{Method: http.MethodPost, Path: "/entity/" + url.PathEscape(schemaSlug), Body: entity}
	if err := c.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	c.alerts.Success("Entity created: " + entityName(out))
	return out, nil
}

func (c *Client) UpdateEntity(ctx context.Context, schemaSlug, idOrSlug string, entity models.Entity) (models.Entity, error) {
	var out models.Entity
	path := fmt.Sprintf("/entity/%s/%s", url.PathEscape(schemaSlug), url.PathEscape(idOrSlug))
	if err := c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: entity}, &out); err != nil {
		return nil, err
	}
	c.alerts.Success("Entity updated: " + entityName(out))
	return out, nil
}

func (c *Client) DeleteEntity(ctx context.Context, schemaSlug, idOrSlug string) (models.Entity, error) {
	var out models.Entity
	path := fmt.Sprintf("/entity/%s/%s", url.PathEscape(schemaSlug), url.PathEscape(idOrSlug))
	if err := c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, &out); err != nil {
		return nil, err
	}
	c.alerts.Success("Entity deleted: " + entityName(out))
	return out, nil
}

func entityName(e models.Entity) string {
	if name, ok := e["name"].(string); ok && name != "" {
		return name
	}
	if slug, ok := e["slug"].(string); ok && slug != "" {
		return slug
	}
	return "(unnamed)"
}
