package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"catalogadmin/internal/alerts"
	"catalogadmin/internal/session"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *session.Store, *alerts.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	sess := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"), "")
	al := alerts.NewStore()
	return New(srv.URL, 5*time.Second, sess, al), sess, al
}

func TestDoAttachesBearerAndMergesHeaders(t *testing.T) {
	t.Parallel()
	var gotAuth, gotContentType, gotAccept string
	mux := http.NewServeMux()
	mux.HandleFunc("/schema", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})
	c, sess, al := newTestClient(t, mux)
	ctx := context.Background()
	if err := sess.SetToken(ctx, "tok-123"); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	hdr := http.Header{}
	hdr.Set("Accept", "application/json")
	var out []any
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/schema", Header: hdr}, &out); err != nil {
		t.Fatalf("do: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Fatalf("expected default content type, got %q", gotContentType)
	}
	if gotAccept != "application/json" {
		t.Fatalf("expected caller header to pass through, got %q", gotAccept)
	}
	if len(al.Values()) != 0 {
		t.Fatalf("success path must not push alerts, got %+v", al.Values())
	}
}

func TestDoCallerAuthorizationWins(t *testing.T) {
	t.Parallel()
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/schema", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	})
	c, sess, _ := newTestClient(t, mux)
	ctx := context.Background()
	_ = sess.SetToken(ctx, "session-token")

	hdr := http.Header{}
	hdr.Set("Authorization", "Basic abc")
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/schema", Header: hdr}, nil); err != nil {
		t.Fatalf("do: %v", err)
	}
	if gotAuth != "Basic abc" {
		t.Fatalf("caller Authorization must win, got %q", gotAuth)
	}
}

func TestDoClassifiesErrorShapes(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		status   int
		body     string
		wantKind Kind
		wantMsg  string
	}{
		{
			name:     "validation list",
			status:   422,
			body:     `{"detail":[{"loc":["body","name"],"msg":"field required"},{"loc":["body","slug"],"msg":"invalid slug"}]}`,
			wantKind: KindValidation,
			wantMsg:  "body.name: field required, body.slug: invalid slug",
		},
		{
			name:     "single message",
			status:   409,
			body:     `{"detail":"schema with slug person already exists"}`,
			wantKind: KindMessage,
			wantMsg:  "schema with slug person already exists",
		},
		{
			name:     "opaque shape",
			status:   500,
			body:     `{"detail":{"trace":"0xdeadbeef"}}`,
			wantKind: KindOpaque,
			wantMsg:  "failed to process request",
		},
		{
			name:     "not json",
			status:   502,
			body:     `<html>bad gateway</html>`,
			wantKind: KindTransport,
			wantMsg:  "Bad Gateway",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			mux := http.NewServeMux()
			mux.HandleFunc("/schema", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			c, _, al := newTestClient(t, mux)

			err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/schema"}, nil)
			if err == nil {
				t.Fatalf("expected error")
			}
			reqErr, ok := err.(*RequestError)
			if !ok {
				t.Fatalf("expected *RequestError, got %T", err)
			}
			if reqErr.Kind != tc.wantKind {
				t.Fatalf("kind: got %q want %q", reqErr.Kind, tc.wantKind)
			}
			if reqErr.Message != tc.wantMsg {
				t.Fatalf("message: got %q want %q", reqErr.Message, tc.wantMsg)
			}
			vals := al.Values()
			if len(vals) != 1 {
				t.Fatalf("expected exactly one alert, got %d", len(vals))
			}
			if vals[0].Level != alerts.LevelDanger {
				t.Fatalf("expected danger alert, got %q", vals[0].Level)
			}
			if vals[0].Message != tc.wantMsg {
				t.Fatalf("alert message: got %q want %q", vals[0].Message, tc.wantMsg)
			}
		})
	}
}

func TestDoTransportFailurePushesOneAlert(t *testing.T) {
	t.Parallel()
	sess := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"), "")
	al := alerts.NewStore()
	// Nothing listens on this address.
	c := New("http://127.0.0.1:1", time.Second, sess, al)

	err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/schema"}, nil)
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if len(al.Values()) != 1 {
		t.Fatalf("expected exactly one alert, got %d", len(al.Values()))
	}
}

func TestUnauthorizedWithTokenForcesLogout(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	mux.HandleFunc("/schema", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"token expired"}`))
	})
	c, sess, _ := newTestClient(t, mux)
	ctx := context.Background()
	_ = sess.SetToken(ctx, "stale")
	_ = sess.SetUser(ctx, "alice")
	_ = sess.SetExpiry(ctx, time.Now().Add(time.Hour))

	err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/schema"}, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	reqErr := err.(*RequestError)
	if !reqErr.SessionExpired {
		t.Fatalf("expected SessionExpired to be set")
	}
	// Session must already be empty when the caller observes the error.
	tok, _ := sess.Token(ctx)
	u, _ := sess.User(ctx)
	e, _ := sess.Expiry(ctx)
	if tok != "" || u != "" || !e.IsZero() {
		t.Fatalf("expected cleared session, got token=%q user=%q expiry=%v", tok, u, e)
	}
}

func TestUnauthorizedWithoutTokenDoesNotFlagExpiry(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"invalid credentials"}`))
	})
	c, _, _ := newTestClient(t, mux)

	err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/login"}, nil)
	reqErr := err.(*RequestError)
	if reqErr.SessionExpired {
		t.Fatalf("401 without a stored token must not flag session expiry")
	}
	if reqErr.Message != "invalid credentials" {
		t.Fatalf("unexpected message %q", reqErr.Message)
	}
}
