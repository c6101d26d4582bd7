package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"catalogadmin/internal/alerts"
	"catalogadmin/internal/changes"
	"catalogadmin/internal/config"
	"catalogadmin/internal/gateway"
	"catalogadmin/internal/perms"
	"catalogadmin/internal/session"
)

// newTestRouter wires the full stack against a fake catalog backend.
func newTestRouter(t *testing.T, backend http.Handler) (http.Handler, *session.Store, *alerts.Store) {
	t.Helper()
	upstream := httptest.NewServer(backend)
	t.Cleanup(upstream.Close)

	sess := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"), "")
	al := alerts.NewStore()
	gw := gateway.New(upstream.URL, 5*time.Second, sess, al)
	cfg := config.Config{ListenAddr: ":0", CatalogAPIBase: upstream.URL}
	r := NewRouter(cfg, gw, changes.NewService(gw, al), perms.NewService(gw, al))
	return r, sess, al
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestLoginRoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostFormValue("username") != "alice" {
			w.WriteHeader(401)
			w.Write([]byte(`{"detail":"Incorrect username or password"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"T","token_type":"bearer","expiration_date":"2030-01-01"}`))
	})
	router, sess, _ := newTestRouter(t, mux)

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"username":"alice","password":"pw"}`)
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/login", body))

	if rec.Code != 200 {
		t.Fatalf("login status = %d body=%s", rec.Code, rec.Body.String())
	}
	tok, err := sess.Token(context.Background())
	if err != nil || tok != "T" {
		t.Fatalf("session token = %q err=%v", tok, err)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/me", nil))
	var me map[string]any
	decodeBody(t, rec, &me)
	if me["username"] != "alice" || me["logged_in"] != true {
		t.Fatalf("unexpected me payload: %v", me)
	}
}

func TestLoginRejectsBadPayload(t *testing.T) {
	router, _, _ := newTestRouter(t, http.NewServeMux())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/login", strings.NewReader(`{"username":""}`)))
	if rec.Code != 400 {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestLoginFailurePropagatesBackendStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"detail":"Incorrect username or password"}`))
	})
	router, _, al := newTestRouter(t, mux)

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"username":"alice","password":"nope"}`)
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/login", body))

	if rec.Code != 401 {
		t.Fatalf("status = %d", rec.Code)
	}
	var apiErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	decodeBody(t, rec, &apiErr)
	if apiErr.Message != "Incorrect username or password" {
		t.Fatalf("message = %q", apiErr.Message)
	}
	if len(al.Values()) != 1 {
		t.Fatalf("expected one alert, got %d", len(al.Values()))
	}
}

func TestChangeDetailRouteCachesAndValidates(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/changes/detail/entity/42", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"change_type":"UPDATE","object_type":"ENTITY","reviewed":false,"changes":{"name":{"old":"a","new":"b","current":"a"}},"entity":{"slug":"row","name":"Row","schema":"people"}}`))
	})
	router, _, _ := newTestRouter(t, mux)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/changes/detail/entity/42", nil))
		if rec.Code != 200 {
			t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
		}
	}
	if calls != 1 {
		t.Fatalf("backend called %d times, want 1", calls)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/changes/detail/widget/42", nil))
	if rec.Code != 400 {
		t.Fatalf("bad object type status = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/changes/detail/entity/nope", nil))
	if rec.Code != 400 {
		t.Fatalf("bad id status = %d", rec.Code)
	}
}

func TestReviewRouteEvictsCachedDetail(t *testing.T) {
	detailCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/changes/detail/schema/7", func(w http.ResponseWriter, r *http.Request) {
		detailCalls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"change_type":"UPDATE","object_type":"SCHEMA","reviewed":false,"changes":{}}`))
	})
	mux.HandleFunc("/changes/review/7", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":7,"created_at":"2026-01-02T03:04:05Z","created_by":"bob","status":"APPROVED","object_type":"SCHEMA","change_type":"UPDATE"}`))
	})
	router, _, al := newTestRouter(t, mux)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/changes/detail/schema/7", nil))
	if rec.Code != 200 {
		t.Fatalf("detail status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	body := strings.NewReader(`{"result":"APPROVE"}`)
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/changes/7/review", body))
	if rec.Code != 200 {
		t.Fatalf("review status = %d body=%s", rec.Code, rec.Body.String())
	}
	found := false
	for _, m := range al.Values() {
		if m.Level == alerts.LevelSuccess && strings.Contains(m.Message, "7") {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a success alert for the submitted review")
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/changes/detail/schema/7", nil))
	if rec.Code != 200 {
		t.Fatalf("detail status = %d", rec.Code)
	}
	if detailCalls != 2 {
		t.Fatalf("detail fetched %d times, want refetch after review", detailCalls)
	}
}

func TestReviewRouteRejectsUnknownVerdict(t *testing.T) {
	router, _, _ := newTestRouter(t, http.NewServeMux())

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"result":"MAYBE"}`)
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/changes/7/review", body))
	if rec.Code != 400 {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestPermissionRoutes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/permissions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			if r.URL.Query().Get("recipient_type") != "User" {
				t.Errorf("recipient_type = %q", r.URL.Query().Get("recipient_type"))
			}
			w.Write([]byte(`[{"id":1,"permission":"READ_SCHEMA"}]`))
		case http.MethodPost:
			w.Write([]byte(`false`))
		case http.MethodDelete:
			w.Write([]byte(`true`))
		}
	})
	router, _, al := newTestRouter(t, mux)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/permissions?recipient_type=User", nil))
	if rec.Code != 200 {
		t.Fatalf("query status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	body := strings.NewReader(`{"recipient_type":"User","recipient_name":"alice","permission":"READ_SCHEMA"}`)
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/permissions", body))
	var granted map[string]bool
	decodeBody(t, rec, &granted)
	if granted["granted"] {
		t.Fatal("expected granted=false")
	}
	warned := false
	for _, m := range al.Values() {
		if m.Level == alerts.LevelWarning {
			warned = true
		}
	}
	if !warned {
		t.Fatal("expected a warning alert for the refused grant")
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/v1/permissions", strings.NewReader(`{"ids":[1,2]}`)))
	var revoked map[string]bool
	decodeBody(t, rec, &revoked)
	if !revoked["revoked"] {
		t.Fatal("expected revoked=true")
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/v1/permissions", strings.NewReader(`{"ids":[]}`)))
	if rec.Code != 400 {
		t.Fatalf("empty ids status = %d", rec.Code)
	}
}

func TestAlertRoutes(t *testing.T) {
	router, _, al := newTestRouter(t, http.NewServeMux())
	first := al.Danger("boom")
	al.Info("fyi")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/alerts", nil))
	var list []alerts.Message
	decodeBody(t, rec, &list)
	if len(list) != 2 {
		t.Fatalf("alerts = %d, want 2", len(list))
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/v1/alerts/"+first.ID, nil))
	if rec.Code != 200 {
		t.Fatalf("dismiss status = %d", rec.Code)
	}
	if len(al.Values()) != 1 {
		t.Fatalf("alerts after dismiss = %d", len(al.Values()))
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/v1/alerts", nil))
	if len(al.Values()) != 0 {
		t.Fatal("alerts not cleared")
	}
}

func TestHealthEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"catalog"}`))
	})
	router, _, al := newTestRouter(t, mux)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health/live", nil))
	if rec.Code != 200 {
		t.Fatalf("live status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health/ready", nil))
	if rec.Code != 200 {
		t.Fatalf("ready status = %d body=%s", rec.Code, rec.Body.String())
	}
	if len(al.Values()) != 0 {
		t.Fatal("health checks must not push alerts")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing request id header")
	}
}

func TestVersionRoute(t *testing.T) {
	router, _, _ := newTestRouter(t, http.NewServeMux())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/version", nil))
	var info map[string]string
	decodeBody(t, rec, &info)
	if info["service"] != "catalogadmin" || info["version"] == "" {
		t.Fatalf("unexpected version payload: %v", info)
	}
}
