package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"catalogadmin/internal/gateway"
	"catalogadmin/internal/models"
	"catalogadmin/internal/util"
)

func (h *Handlers) CreateSchema(w http.ResponseWriter, r *http.Request) {
	var draft map[string]any
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		badRequest(w, r, "invalid json")
		return
	}
	schema, err := h.gw.CreateSchema(r.Context(), draft)
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 201, schema)
}

func (h *Handlers) UpdateSchema(w http.ResponseWriter, r *http.Request) {
	var draft map[string]any
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		badRequest(w, r, "invalid json")
		return
	}
	schema, err := h.gw.UpdateSchema(r.Context(), chi.URLParam(r, "slug"), draft)
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, schema)
}

func (h *Handlers) DeleteSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := h.gw.DeleteSchema(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, schema)
}

func (h *Handlers) CreateEntity(w http.ResponseWriter, r *http.Request) {
	var entity models.Entity
	if err := json.NewDecoder(r.Body).Decode(&entity); err != nil {
		badRequest(w, r, "invalid json")
		return
	}
	out, err := h.gw.CreateEntity(r.Context(), chi.URLParam(r, "slug"), entity)
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 201, out)
}

func (h *Handlers) UpdateEntity(w http.ResponseWriter, r *http.Request) {
	var entity models.Entity
	if err := json.NewDecoder(r.Body).Decode(&entity); err != nil {
		badRequest(w, r, "invalid json")
		return
	}
	out, err := h.gw.UpdateEntity(r.Context(), chi.URLParam(r, "slug"), chi.URLParam(r, "idOrSlug"), entity)
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, out)
}

func (h *Handlers) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	out, err := h.gw.DeleteEntity(r.Context(), chi.URLParam(r, "slug"), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, out)
}

func (h *Handlers) UserMemberships(w http.ResponseWriter, r *http.Request) {
	groups, err := h.gw.UserMemberships(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, groups)
}

func (h *Handlers) ActivateUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	ok, err := h.gw.ActivateUser(r.Context(), username)
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	if ok {
		h.gw.Alerts().Success("User " + username + " activated")
	} else {
		h.gw.Alerts().Warning("Activation of user " + username + " not possible")
	}
	util.WriteJSON(w, 200, map[string]bool{"activated": ok})
}

func (h *Handlers) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	ok, err := h.gw.DeactivateUser(r.Context(), username)
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	if ok {
		h.gw.Alerts().Success("User " + username + " deactivated")
	} else {
		h.gw.Alerts().Warning("Deactivation of user " + username + " not possible")
	}
	util.WriteJSON(w, 200, map[string]bool{"deactivated": ok})
}

func groupID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil
}

func (h *Handlers) GetGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(r)
	if !ok {
		badRequest(w, r, "group id must be an integer")
		return
	}
	group, err := h.gw.GetGroup(r.Context(), id)
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, group)
}

func (h *Handlers) GroupMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(r)
	if !ok {
		badRequest(w, r, "group id must be an integer")
		return
	}
	members, err := h.gw.GroupMembers(r.Context(), id)
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, members)
}

func (h *Handlers) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var draft gateway.GroupDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		badRequest(w, r, "invalid json")
		return
	}
	group, err := h.gw.CreateGroup(r.Context(), draft)
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 201, group)
}

func (h *Handlers) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(r)
	if !ok {
		badRequest(w, r, "group id must be an integer")
		return
	}
	var draft gateway.GroupDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		badRequest(w, r, "invalid json")
		return
	}
	group, err := h.gw.UpdateGroup(r.Context(), id, draft)
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, group)
}

func (h *Handlers) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(r)
	if !ok {
		badRequest(w, r, "group id must be an integer")
		return
	}
	deleted, err := h.gw.DeleteGroup(r.Context(), id)
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, map[string]bool{"deleted": deleted})
}

type membersRequest struct {
	UserIDs []int `json:"user_ids"`
}

func (h *Handlers) AddGroupMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(r)
	if !ok {
		badRequest(w, r, "group id must be an integer")
		return
	}
	var req membersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.UserIDs) == 0 {
		badRequest(w, r, "user_ids must not be empty")
		return
	}
	added, err := h.gw.AddGroupMembers(r.Context(), id, req.UserIDs)
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, map[string]bool{"added": added})
}

func (h *Handlers) RemoveGroupMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(r)
	if !ok {
		badRequest(w, r, "group id must be an integer")
		return
	}
	var req membersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.UserIDs) == 0 {
		badRequest(w, r, "user_ids must not be empty")
		return
	}
	removed, err := h.gw.RemoveGroupMembers(r.Context(), id, req.UserIDs)
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	util.WriteJSON(w, 200, map[string]bool{"removed": removed})
}
