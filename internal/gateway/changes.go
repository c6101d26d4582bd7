package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"catalogadmin/internal/models"
)

// PendingChanges fetches every change request still awaiting review,
// across all object types.
func (c *Client) PendingChanges(ctx context.Context) ([]models.ChangeRequest, error) {
	q := url.Values{}
	q.Set("all", "true")
	return c.changeList(ctx, "/changes/pending", q)
}

func (c *Client) SchemaChanges(ctx context.Context, schemaSlug string) ([]models.ChangeRequest, error) {
	return c.changeList(ctx, "/changes/schema/"+url.PathEscape(schemaSlug), nil)
}

func (c *Client) EntityChanges(ctx context.Context, schemaSlug, entityIDOrSlug string) ([]models.ChangeRequest, error) {
	path := fmt.Sprintf("/changes/entity/%s/%s", url.PathEscape(schemaSlug), url.PathEscape(entityIDOrSlug))
	return c.changeList(ctx, path, nil)
}

func (c *Client) ChangeDetail(ctx context.Context, objectType models.ObjectType, changeID int) (models.ChangeDetail, error) {
	var out models.ChangeDetail
	path := fmt.Sprintf("/changes/detail/%s/%d", strings.ToLower(string(objectType)), changeID)
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: path}, &out); err != nil {
		return models.ChangeDetail{}, err
	}
	return out, nil
}

type reviewPayload struct {
	Result  models.ReviewResult `json:"result"`
	Comment *string             `json:"comment"`
}

// SubmitReview posts the terminal verdict for a change request and
// returns its updated state.
func (c *Client) SubmitReview(ctx context.Context, changeID int, result models.ReviewResult, comment *string) (models.ChangeRequest, error) {
	var out models.ChangeRequest
	req := Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/changes/review/%d", changeID),
		Body:   reviewPayload{Result: result, Comment: comment},
	}
	if err := c.Do(ctx, req, &out); err != nil {
		return models.ChangeRequest{}, err
	}
	return out, nil
}

// changeList tolerates both response forms the backend has shipped: a
// bare array and a paginated {items: [...]} envelope.
func (c *Client) changeList(ctx context.Context, path string, q url.Values) ([]models.ChangeRequest, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: q}, &raw); err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var out []models.ChangeRequest
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, c.fail(&RequestError{Kind: KindTransport, Message: "invalid change list payload"})
		}
		return out, nil
	}
	var page struct {
		Items []models.ChangeRequest `json:"items"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, c.fail(&RequestError{Kind: KindTransport, Message: "invalid change list payload"})
	}
	return page.Items, nil
}
