package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"catalogadmin/internal/gateway"
	"catalogadmin/internal/middleware"
	"catalogadmin/internal/models"
	"catalogadmin/internal/util"
)

func (h *Handlers) writeGatewayError(w http.ResponseWriter, r *http.Request, err error) {
	rid := middleware.RequestID(r.Context())
	var reqErr *gateway.RequestError
	if errors.As(err, &reqErr) {
		status := reqErr.Status
		if status == 0 {
			status = http.StatusBadGateway
		}
		code := string(reqErr.Kind)
		if reqErr.SessionExpired {
			code = "session_expired"
		}
		util.WriteError(w, status, code, reqErr.Message, rid)
		return
	}
	util.WriteError(w, http.StatusInternalServerError, "internal_error", err.Error(), rid)
}

func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	util.WriteError(w, http.StatusBadRequest, "bad_request", msg, middleware.RequestID(r.Context()))
}

func parseObjectType(s string) (models.ObjectType, bool) {
	switch strings.ToUpper(s) {
	case string(models.ObjectSchema):
		return models.ObjectSchema, true
	case string(models.ObjectEntity):
		return models.ObjectEntity, true
	}
	return "", false
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "invalid json")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		badRequest(w, r, "username and password are required")
		return
	}
	tok, err := h.gw.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, map[string]any{
		"username":        req.Username,
		"expiration_date": tok.ExpirationDate,
	})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.gw.Logout(r.Context()); err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, map[string]string{"status": "ok"})
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	sess := h.gw.Session()
	user, err := sess.User(r.Context())
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	token, err := sess.Token(r.Context())
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	out := map[string]any{
		"username":  user,
		"logged_in": token != "",
	}
	if expiry, err := sess.Expiry(r.Context()); err == nil && !expiry.IsZero() {
		out["expiration_date"] = expiry.Format(time.RFC3339)
		if !expiry.After(time.Now().UTC()) {
			out["logged_in"] = false
		}
	}
	util.WriteJSON(w, 200, out)
}

func (h *Handlers) ListSchemas(w http.ResponseWriter, r *http.Request) {
	opts := gateway.SchemaListOptions{
		All:         r.URL.Query().Get("all") == "true",
		DeletedOnly: r.URL.Query().Get("deleted_only") == "true",
	}
	schemas, err := h.gw.ListSchemas(r.Context(), opts)
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, schemas)
}

func (h *Handlers) GetSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := h.gw.GetSchema(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, schema)
}

func (h *Handlers) ListEntities(w http.ResponseWriter, r *http.Request) {
	opts := gateway.DefaultEntityListOptions()
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			opts.Offset = n
		}
	}
	if v := q.Get("order_by"); v != "" {
		opts.OrderBy = v
	}
	opts.Ascending = q.Get("ascending") != "false"
	opts.All = q.Get("all") == "true"
	opts.AllFields = q.Get("all_fields") == "true"
	opts.DeletedOnly = q.Get("deleted_only") == "true"

	entities, err := h.gw.ListEntities(r.Context(), chi.URLParam(r, "slug"), opts)
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, entities)
}

func (h *Handlers) GetEntity(w http.ResponseWriter, r *http.Request) {
	entity, err := h.gw.GetEntity(r.Context(), chi.URLParam(r, "slug"), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, entity)
}

func (h *Handlers) PendingChanges(w http.ResponseWriter, r *http.Request) {
	list, err := h.changes.ListPending(r.Context())
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, list)
}

func (h *Handlers) SchemaChanges(w http.ResponseWriter, r *http.Request) {
	list, err := h.changes.ListForObject(r.Context(), models.ObjectSchema, chi.URLParam(r, "slug"), "")
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, list)
}

func (h *Handlers) EntityChanges(w http.ResponseWriter, r *http.Request) {
	list, err := h.changes.ListForObject(r.Context(), models.ObjectEntity, chi.URLParam(r, "slug"), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, list)
}

func (h *Handlers) ChangeDetail(w http.ResponseWriter, r *http.Request) {
	objType, ok := parseObjectType(chi.URLParam(r, "objectType"))
	if !ok {
		badRequest(w, r, "object type must be schema or entity")
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "change id must be an integer")
		return
	}

	h.detailMu.Lock()
	defer h.detailMu.Unlock()
	if err := h.changes.LoadDetail(r.Context(), h.details, objType, id, nil); err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, h.details[id])
}

type reviewRequest struct {
	Result  models.ReviewResult `json:"result"`
	Comment *string             `json:"comment"`
}

func (h *Handlers) ReviewChange(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "change id must be an integer")
		return
	}
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "invalid json")
		return
	}
	if req.Result != models.ReviewApprove && req.Result != models.ReviewDecline {
		badRequest(w, r, "result must be APPROVE or DECLINE")
		return
	}
	change, err := h.changes.SubmitVerdict(r.Context(), id, req.Result, req.Comment)
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	h.detailMu.Lock()
	delete(h.details, id)
	h.detailMu.Unlock()
	util.WriteJSON(w, 200, change)
}

func (h *Handlers) QueryPermissions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := gateway.PermissionFilter{
		RecipientType: models.RecipientType(q.Get("recipient_type")),
		ObjType:       models.PermissionTargetType(q.Get("obj_type")),
	}
	if v := q.Get("recipient_id"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(w, r, "recipient_id must be an integer")
			return
		}
		filter.RecipientID = &n
	}
	if v := q.Get("obj_id"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(w, r, "obj_id must be an integer")
			return
		}
		filter.ObjID = &n
	}
	grants, err := h.perms.Query(r.Context(), filter)
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, grants)
}

func (h *Handlers) GrantPermission(w http.ResponseWriter, r *http.Request) {
	var grant gateway.PermissionGrant
	if err := json.NewDecoder(r.Body).Decode(&grant); err != nil {
		badRequest(w, r, "invalid json")
		return
	}
	ok, err := h.perms.Grant(r.Context(), grant)
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, map[string]bool{"granted": ok})
}

type revokeRequest struct {
	IDs []int `json:"ids"`
}

func (h *Handlers) RevokePermissions(w http.ResponseWriter, r *http.Request) {
	var req revokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "invalid json")
		return
	}
	if len(req.IDs) == 0 {
		badRequest(w, r, "ids must not be empty")
		return
	}
	ok, err := h.perms.Revoke(r.Context(), req.IDs)
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, map[string]bool{"revoked": ok})
}

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.gw.ListUsers(r.Context())
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, users)
}

func (h *Handlers) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.gw.ListGroups(r.Context())
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, groups)
}

func (h *Handlers) ListAlerts(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, 200, h.gw.Alerts().Values())
}

func (h *Handlers) ClearAlerts(w http.ResponseWriter, r *http.Request) {
	h.gw.Alerts().Clear()
	util.WriteJSON(w, 200, map[string]string{"status": "ok"})
}

func (h *Handlers) DismissAlert(w http.ResponseWriter, r *http.Request) {
	h.gw.Alerts().Pop(chi.URLParam(r, "id"))
	util.WriteJSON(w, 200, map[string]string{"status": "ok"})
}
