package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type addMemberRequest struct {
	User string `json:"user"`
}

// HandleAddGroupMember handles POST /v1/groups/{group}/members
func HandleAddGroupMember(admin adminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		group := chi.URLParam(r, "group")

		var req addMemberRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if req.User == "" {
			writeJSONError(w, http.StatusBadRequest, "user is required")
			return
		}

		if err := admin.AddGroupMember(r.Context(), group, req.User); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusNoContent, nil)
	}
}

// HandleRemoveGroupMember handles DELETE /v1/groups/{group}/members/{user}
func HandleRemoveGroupMember(admin adminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		group := chi.URLParam(r, "group")
		user := chi.URLParam(r, "user")

		if err := admin.RemoveGroupMember(r.Context(), group, user); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusNoContent, nil)
	}
}

// HandleListGroupMembers handles GET /v1/groups/{group}/members
func HandleListGroupMembers(admin adminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		group := chi.URLParam(r, "group")

		members, err := admin.ListGroupMembers(r.Context(), group)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"members": members})
	}
}

// HandleListUserGroups handles GET /v1/users/{user}/groups
func HandleListUserGroups(admin adminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := chi.URLParam(r, "user")

		groups, err := admin.GroupsForUser(r.Context(), user)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
	}
}
