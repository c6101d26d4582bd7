package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"catalogadmin/internal/models"
)

// PermissionFilter narrows a permission query; omitted fields leave
// that dimension unconstrained. Filters combine with logical AND.
type PermissionFilter struct {
	RecipientType models.RecipientType
	RecipientID   *int
	ObjType       models.PermissionTargetType
	ObjID         *int
}

func (f PermissionFilter) query() url.Values {
	q := url.Values{}
	if f.RecipientType != "" {
		q.Set("recipient_type", string(f.RecipientType))
	}
	if f.RecipientID != nil {
		q.Set("recipient_id", strconv.Itoa(*f.RecipientID))
	}
	if f.ObjType != "" {
		q.Set("obj_type", string(f.ObjType))
	}
	if f.ObjID != nil {
		q.Set("obj_id", strconv.Itoa(*f.ObjID))
	}
	return q
}

type PermissionGrant struct {
	RecipientType models.RecipientType        `json:"recipient_type"`
	RecipientName string                      `json:"recipient_name"`
	ObjType       models.PermissionTargetType `json:"obj_type,omitempty"`
	ObjID         *int                        `json:"obj_id,omitempty"`
	Permission    models.PermissionType       `json:"permission"`
}

func (c *Client) Permissions(ctx context.Context, filter PermissionFilter) ([]models.Permission, error) {
	var out []models.Permission
	req := Request{Method: http.MethodGet, Path: "/permissions", Query: filter.query()}
	if err := c.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GrantPermission returns the backend's verdict: false means the grant
// was declined (for example a duplicate), which is not an error.
func (c *Client) GrantPermission(ctx context.Context, grant PermissionGrant) (bool, error) {
	var ok bool
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/permissions", Body: grant}, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// RevokePermissions deletes grants by id. false means nothing matched.
func (c *Client) RevokePermissions(ctx context.Context, permissionIDs []int) (bool, error) {
	var ok bool
	req := Request{Method: http.MethodDelete, Path: "/permissions", Body: permissionIDs}
	if err := c.Do(ctx, req, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Info fetches the backend root info endpoint.
func (c *Client) Info(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/info"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
