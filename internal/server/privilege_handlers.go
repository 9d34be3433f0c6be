package server

import (
	"net/http"

	"github.com/BillTheBest/cdap-security-extn/internal/authz"
)

type grantRequest struct {
	Entity  string   `json:"entity"`
	Role    string   `json:"role"`
	Actions []string `json:"actions"`
}

// parseGrant validates the shared grant/revoke request shape.
func parseGrant(w http.ResponseWriter, r *http.Request) (authz.EntityRef, authz.Principal, []authz.Action, bool) {
	var req grantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return authz.EntityRef{}, authz.Principal{}, nil, false
	}
	if req.Role == "" {
		writeJSONError(w, http.StatusBadRequest, "role is required")
		return authz.EntityRef{}, authz.Principal{}, nil, false
	}
	if len(req.Actions) == 0 {
		writeJSONError(w, http.StatusBadRequest, "actions is required")
		return authz.EntityRef{}, authz.Principal{}, nil, false
	}

	entity, err := authz.ParseEntityPath(req.Entity)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return authz.EntityRef{}, authz.Principal{}, nil, false
	}

	actions := make([]authz.Action, 0, len(req.Actions))
	for _, raw := range req.Actions {
		action, err := authz.ParseAction(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return authz.EntityRef{}, authz.Principal{}, nil, false
		}
		actions = append(actions, action)
	}

	principal := authz.Principal{Name: req.Role, Type: authz.PrincipalTypeRole}
	return entity, principal, actions, true
}

// HandleGrant handles POST /v1/grants
func HandleGrant(authorizer authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entity, principal, actions, ok := parseGrant(w, r)
		if !ok {
			return
		}

		if err := authorizer.Grant(r.Context(), entity, principal, actions); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusNoContent, nil)
	}
}

// HandleRevoke handles POST /v1/revokes
func HandleRevoke(authorizer authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entity, principal, actions, ok := parseGrant(w, r)
		if !ok {
			return
		}

		if err := authorizer.Revoke(r.Context(), entity, principal, actions); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusNoContent, nil)
	}
}

type revokeAllRequest struct {
	Entity string `json:"entity"`
}

// HandleRevokeAll handles POST /v1/revoke-all. Used when an entity is deleted
// and every privilege on it must go.
func HandleRevokeAll(authorizer authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req revokeAllRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}

		entity, err := authz.ParseEntityPath(req.Entity)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := authorizer.RevokeAll(r.Context(), entity); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusNoContent, nil)
	}
}

type privilegeResponse struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
}

// HandleListPrivileges handles GET /v1/principals/{type}/{name}/privileges
func HandleListPrivileges(authorizer authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := principalFromURL(w, r)
		if !ok {
			return
		}

		privileges, err := authorizer.ListPrivileges(r.Context(), principal)
		if err != nil {
			writeError(w, err)
			return
		}

		result := make([]privilegeResponse, 0, len(privileges))
		for _, p := range privileges {
			result = append(result, privilegeResponse{
				Entity: p.Entity.Path(),
				Action: string(p.Action),
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"privileges": result})
	}
}

type enforceRequest struct {
	Entity string `json:"entity"`
	User   string `json:"user"`
	Action string `json:"action"`
}

// HandleEnforce handles POST /v1/enforce. Returns 200 with allowed=true when
// the check passes; a denial is reported as 403 by the error translation.
func HandleEnforce(authorizer authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req enforceRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if req.User == "" {
			writeJSONError(w, http.StatusBadRequest, "user is required")
			return
		}

		entity, err := authz.ParseEntityPath(req.Entity)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		action, err := authz.ParseAction(req.Action)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		principal := authz.Principal{Name: req.User, Type: authz.PrincipalTypeUser}
		if err := authorizer.Enforce(r.Context(), entity, principal, action); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"allowed": true})
	}
}
