package gateway

import (
	"context"
	"net/http"
	"net/url"

	"catalogadmin/internal/models"
)

// Login exchanges form-encoded credentials for a bearer token and
// persists token, username and expiry into the session store. Nothing
// is persisted when the exchange fails.
func (c *Client) Login(ctx context.Context, username, password string) (models.Token, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var tok models.Token
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/login", Form: form}, &tok); err != nil {
		return models.Token{}, err
	}
	if err := c.session.SetToken(ctx, tok.AccessToken); err != nil {
		return models.Token{}, c.fail(&RequestError{Kind: KindTransport, Message: "failed to persist session: " + err.Error()})
	}
	if err := c.session.SetUser(ctx, username); err != nil {
		return models.Token{}, c.fail(&RequestError{Kind: KindTransport, Message: "failed to persist session: " + err.Error()})
	}
	if err := c.session.SetExpiry(ctx, tok.ExpirationDate.Time); err != nil {
		return models.Token{}, c.fail(&RequestError{Kind: KindTransport, Message: "failed to persist session: " + err.Error()})
	}
	c.alerts.Success("Welcome back, " + username + "!")
	return tok, nil
}

// Logout drops the local session. The backend keeps no server-side
// session to invalidate.
func (c *Client) Logout(ctx context.Context) error {
	return c.session.Clear(ctx)
}

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/users"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UserMemberships lists the groups a user belongs to.
func (c *Client) UserMemberships(ctx context.Context, username string) ([]models.Group, error) {
	var out []models.Group
	path := "/users/" + url.PathEscape(username) + "/memberships"
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: path}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ActivateUser(ctx context.Context, username string) (bool, error) {
	var ok bool
	path := "/users/" + url.PathEscape(username)
	if err := c.Do(ctx, Request{Method: http.MethodPatch, Path: path}, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (c *Client) DeactivateUser(ctx context.Context, username string) (bool, error) {
	var ok bool
	path := "/users/" + url.PathEscape(username)
	if err := c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, &ok); err != nil {
		return false, err
	}
	return ok, nil
}
