package gateway

import (
	"context"
	"fmt"
	"net/http"

	"catalogadmin/internal/models"
)

type GroupDraft struct {
	Name     string `json:"name"`
	ParentID *int   `json:"parent_id"`
}

func (c *Client) ListGroups(ctx context.Context) ([]models.Group, error) {
	var out []models.Group
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/groups"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetGroup(ctx context.Context, id int) (models.Group, error) {
	var out models.Group
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/groups/%d", id)}, &out); err != nil {
		return models.Group{}, err
	}
	return out, nil
}

func (c *Client) GroupMembers(ctx context.Context, id int) ([]models.User, error) {
	var out []models.User
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/groups/%d/members", id)}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateGroup(ctx context.Context, draft GroupDraft) (models.Group, error) {
	var out models.Group
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/groups", Body: draft}, &out); err != nil {
		return models.Group{}, err
	}
	return out, nil
}

func (c *Client) UpdateGroup(ctx context.Context, id int, draft GroupDraft) (models.Group, error) {
	var out models.Group
	if err := c.Do(ctx, Request{Method: http.MethodPut, Path: fmt.Sprintf("/groups/%d", id), Body: draft}, &out); err != nil {
		return models.Group{}, err
	}
	return out, nil
}

func (c *Client) DeleteGroup(ctx context.Context, id int) (bool, error) {
	var ok bool
	if err := c.Do(ctx, Request{Method: http.MethodDelete, Path: fmt.Sprintf("/groups/%d", id)}, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (c *Client) AddGroupMembers(ctx context.Context, id int, userIDs []int) (bool, error) {
	var ok bool
	req := Request{Method: http.MethodPatch, Path: fmt.Sprintf("/groups/%d/members", id), Body: userIDs}
	if err := c.Do(ctx, req, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (c *Client) RemoveGroupMembers(ctx context.Context, id int, userIDs []int) (bool, error) {
	var ok bool
	req := Request{Method: http.MethodDelete, Path: fmt.Sprintf("/groups/%d/members", id), Body: userIDs}
	if err := c.Do(ctx, req, &ok); err != nil {
		return false, err
	}
	return ok, nil
}
