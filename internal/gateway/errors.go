package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

type Kind string

const (
	// KindTransport covers network failures and unparsable responses.
	KindTransport Kind = "transport"
	// KindValidation is a field-level problem list from the backend.
	KindValidation Kind = "validation"
	// KindMessage is a single string error description.
	KindMessage Kind = "message"
	// KindOpaque is an error shape matching none of the above.
	KindOpaque Kind = "opaque"
)

type RequestError struct {
	Status         int
	Kind           Kind
	Message        string
	SessionExpired bool
}

func (e *RequestError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("catalog API: %s (status %d)", e.Message, e.Status)
	}
	return "catalog API: " + e.Message
}

// errorEnvelope matches the backend's error body: detail is either a
// plain string or a list of {loc, msg} validation problems.
type errorEnvelope struct {
	Detail json.RawMessage `json:"detail"`
}

type validationProblem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// classify turns a failed response into a RequestError per the error
// taxonomy. An authorization failure while a token is present clears
// the whole session before the caller sees the error.
func (c *Client) classify(ctx context.Context, resp *http.Response) *RequestError {
	reqErr := &RequestError{Status: resp.StatusCode}

	if resp.StatusCode == http.StatusUnauthorized {
		token, err := c.session.Token(ctx)
		if err == nil && token != "" {
			if err := c.session.Clear(ctx); err != nil {
				log.Printf("session clear after expiry: %v", err)
			}
			reqErr.SessionExpired = true
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		reqErr.Kind = KindTransport
		reqErr.Message = http.StatusText(resp.StatusCode)
		return reqErr
	}

	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Detail) == 0 {
		reqErr.Kind = KindTransport
		reqErr.Message = http.StatusText(resp.StatusCode)
		return reqErr
	}

	var msg string
	if err := json.Unmarshal(env.Detail, &msg); err == nil {
		reqErr.Kind = KindMessage
		reqErr.Message = msg
		return reqErr
	}

	var problems []validationProblem
	if err := json.Unmarshal(env.Detail, &problems); err == nil && len(problems) > 0 && problems[0].Msg != "" {
		parts := make([]string, 0, len(problems))
		for _, p := range problems {
			parts = append(parts, fmt.Sprintf("%s: %s", joinLoc(p.Loc), p.Msg))
		}
		reqErr.Kind = KindValidation
		reqErr.Message = strings.Join(parts, ", ")
		return reqErr
	}

	// Unknown error shape: keep the raw detail out of the user-facing
	// message, it only goes to the log.
	log.Printf("unrecognized error detail from catalog API (status %d): %s", resp.StatusCode, string(env.Detail))
	reqErr.Kind = KindOpaque
	reqErr.Message = "failed to process request"
	return reqErr
}

func joinLoc(loc []any) string {
	if len(loc) == 0 {
		return "request"
	}
	parts := make([]string, 0, len(loc))
	for _, l := range loc {
		parts = append(parts, fmt.Sprintf("%v", l))
	}
	return strings.Join(parts, ".")
}
