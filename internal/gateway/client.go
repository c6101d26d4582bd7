// Package gateway is the single chokepoint for every HTTP exchange
// with the catalog backend. It attaches credentials from the session
// store, normalizes error shapes, detects session expiry, and reports
// every failure to the alert store exactly once.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"catalogadmin/internal/alerts"
	"catalogadmin/internal/session"
)

type Client struct {
	base    string
	http    *http.Client
	session *session.Store
	alerts  *alerts.Store
}

func New(baseURL string, timeout time.Duration, sess *session.Store, al *alerts.Store) *Client {
	return &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		session: sess,
		alerts:  al,
	}
}

// Request fully enumerates one backend exchange. Body is JSON-encoded
// unless it is already a raw string or byte slice; Form wins over Body
// and is sent urlencoded.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   any
	Form   url.Values
}

// Do performs the exchange and decodes a JSON response into out when
// out is non-nil. Any failure is classified, reported to the alert
// store once, and returned as a *RequestError; callers treat a non-nil
// error as "operation did not happen, user already informed".
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	u := c.base + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	contentType := "application/json"
	switch {
	case len(req.Form) > 0:
		body = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.Body != nil:
		switch v := req.Body.(type) {
		case string:
			body = strings.NewReader(v)
		case []byte:
			body = bytes.NewReader(v)
		default:
			raw, err := json.Marshal(req.Body)
			if err != nil {
				return c.fail(&RequestError{Kind: KindTransport, Message: "invalid request payload: " + err.Error()})
			}
			body = bytes.NewReader(raw)
		}
	}

	hreq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return c.fail(&RequestError{Kind: KindTransport, Message: err.Error()})
	}
	hreq.Header.Set("Content-Type", contentType)
	for k, vs := range req.Header {
		hreq.Header.Del(k)
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}
	if hreq.Header.Get("Authorization") == "" {
		token, err := c.session.Token(ctx)
		if err != nil {
			return c.fail(&RequestError{Kind: KindTransport, Message: "session store: " + err.Error()})
		}
		if token != "" {
			hreq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(hreq)
	if err != nil {
		return c.fail(&RequestError{Kind: KindTransport, Message: "catalog API unreachable: " + err.Error()})
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.fail(c.classify(ctx, resp))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return c.fail(&RequestError{
				Status:  resp.StatusCode,
				Kind:    KindTransport,
				Message: "invalid response from catalog API: " + err.Error(),
			})
		}
	}
	return nil
}

// fail pushes the single user-facing alert for this failure and
// returns the error. Success paths never push here.
func (c *Client) fail(reqErr *RequestError) error {
	c.alerts.Danger(reqErr.Message)
	return reqErr
}

// Probe checks backend reachability without touching the alert store,
// so health checks do not flood the user-facing notification queue.
func (c *Client) Probe(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/info", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode >= 500 {
		return &RequestError{Status: resp.StatusCode, Kind: KindTransport, Message: http.StatusText(resp.StatusCode)}
	}
	return nil
}

// Session exposes the session store backing this client.
func (c *Client) Session() *session.Store {
	return c.session
}

// Alerts exposes the alert store the client reports into.
func (c *Client) Alerts() *alerts.Store {
	return c.alerts
}
