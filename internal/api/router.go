package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"catalogadmin/internal/changes"
	"catalogadmin/internal/config"
	"catalogadmin/internal/gateway"
	"catalogadmin/internal/middleware"
	"catalogadmin/internal/perms"
	"catalogadmin/internal/util"
	"catalogadmin/internal/version"
)

type Handlers struct {
	cfg     config.Config
	gw      *gateway.Client
	changes *changes.Service
	perms   *perms.Service

	detailMu sync.Mutex
	details  changes.DetailCache
}

func NewRouter(cfg config.Config, gw *gateway.Client, chg *changes.Service, pm *perms.Service) http.Handler {
	h := &Handlers{
		cfg:     cfg,
		gw:      gw,
		changes: chg,
		perms:   pm,
		details: changes.DetailCache{},
	}
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.SecurityHeaders)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
		}))
	}

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		util.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", h.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)

		r.Get("/schemas", h.ListSchemas)
		r.Post("/schemas", h.CreateSchema)
		r.Get("/schemas/{slug}", h.GetSchema)
		r.Put("/schemas/{slug}", h.UpdateSchema)
		r.Delete("/schemas/{slug}", h.DeleteSchema)
		r.Get("/schemas/{slug}/entities", h.ListEntities)
		r.Post("/schemas/{slug}/entities", h.CreateEntity)
		r.Get("/schemas/{slug}/entities/{idOrSlug}", h.GetEntity)
		r.Put("/schemas/{slug}/entities/{idOrSlug}", h.UpdateEntity)
		r.Delete("/schemas/{slug}/entities/{idOrSlug}", h.DeleteEntity)

		r.Get("/changes/pending", h.PendingChanges)
		r.Get("/changes/schema/{slug}", h.SchemaChanges)
		r.Get("/changes/entity/{slug}/{idOrSlug}", h.EntityChanges)
		r.Get("/changes/detail/{objectType}/{id}", h.ChangeDetail)
		r.Post("/changes/{id}/review", h.ReviewChange)

		r.Get("/permissions", h.QueryPermissions)
		r.Post("/permissions", h.GrantPermission)
		r.Delete("/permissions", h.RevokePermissions)

		r.Get("/users", h.ListUsers)
		r.Get("/users/{username}/memberships", h.UserMemberships)
		r.Post("/users/{username}/activate", h.ActivateUser)
		r.Post("/users/{username}/deactivate", h.DeactivateUser)

		r.Get("/groups", h.ListGroups)
		r.Post("/groups", h.CreateGroup)
		r.Get("/groups/{id}", h.GetGroup)
		r.Put("/groups/{id}", h.UpdateGroup)
		r.Delete("/groups/{id}", h.DeleteGroup)
		r.Get("/groups/{id}/members", h.GroupMembers)
		r.Post("/groups/{id}/members", h.AddGroupMembers)
		r.Delete("/groups/{id}/members", h.RemoveGroupMembers)

		r.Get("/alerts", h.ListAlerts)
		r.Delete("/alerts", h.ClearAlerts)
		r.Delete("/alerts/{id}", h.DismissAlert)

		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			util.WriteJSON(w, 200, version.Current())
		})
	})

	return r
}

func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	ready := map[string]any{
		"checked_at": time.Now().UTC().Format(time.RFC3339),
		"components": map[string]any{},
	}
	comps := ready["components"].(map[string]any)
	ok := true

	if err := h.gw.Session().Ping(r.Context()); err != nil {
		ok = false
		comps["session_store"] = map[string]any{"ok": false, "error": err.Error()}
	} else {
		comps["session_store"] = map[string]any{"ok": true}
	}

	if err := h.gw.Probe(r.Context()); err != nil {
		ok = false
		comps["catalog_api"] = map[string]any{"ok": false, "error": err.Error()}
	} else {
		comps["catalog_api"] = map[string]any{"ok": true}
	}

	if ok {
		ready["status"] = "ready"
		util.WriteJSON(w, 200, ready)
		return
	}
	ready["status"] = "degraded"
	util.WriteJSON(w, 503, ready)
}
