package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BillTheBest/cdap-security-extn/internal/authz"
)

type createRoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ScopeExpr   string `json:"scope_expr,omitempty"`
}

type roleResponse struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ScopeExpr   string `json:"scope_expr,omitempty"`
	Version     int    `json:"version,omitempty"`
}

// HandleCreateRole handles POST /v1/roles
func HandleCreateRole(admin adminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRoleRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if req.Name == "" {
			writeJSONError(w, http.StatusBadRequest, "name is required")
			return
		}

		if err := admin.CreateRoleDetailed(r.Context(), req.Name, req.Description, req.ScopeExpr); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, roleResponse{
			Name:        req.Name,
			Description: req.Description,
			ScopeExpr:   req.ScopeExpr,
		})
	}
}

// HandleListRoles handles GET /v1/roles
func HandleListRoles(authorizer authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roles, err := authorizer.ListAllRoles(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		names := make([]string, 0, len(roles))
		for _, role := range roles {
			names = append(names, role.Name)
		}
		writeJSON(w, http.StatusOK, map[string]any{"roles": names})
	}
}

// HandleGetRole handles GET /v1/roles/{name}
func HandleGetRole(admin adminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		role, err := admin.RoleDetails(r.Context(), name)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, roleResponse{
			Name:        role.Name,
			Description: role.Description,
			ScopeExpr:   role.ScopeExpr,
			Version:     role.Version,
		})
	}
}

// HandleDropRole handles DELETE /v1/roles/{name}
func HandleDropRole(authorizer authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		if err := authorizer.DropRole(r.Context(), authz.Role{Name: name}); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusNoContent, nil)
	}
}

type assignRoleRequest struct {
	Group string `json:"group"`
}

// HandleAssignRole handles POST /v1/roles/{name}/groups
func HandleAssignRole(authorizer authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		var req assignRoleRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if req.Group == "" {
			writeJSONError(w, http.StatusBadRequest, "group is required")
			return
		}

		principal := authz.Principal{Name: req.Group, Type: authz.PrincipalTypeGroup}
		if err := authorizer.AddRoleToPrincipal(r.Context(), authz.Role{Name: name}, principal); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusNoContent, nil)
	}
}

// HandleUnassignRole handles DELETE /v1/roles/{name}/groups/{group}
func HandleUnassignRole(authorizer authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		group := chi.URLParam(r, "group")

		principal := authz.Principal{Name: group, Type: authz.PrincipalTypeGroup}
		if err := authorizer.RemoveRoleFromPrincipal(r.Context(), authz.Role{Name: name}, principal); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusNoContent, nil)
	}
}

// HandleListPrincipalRoles handles GET /v1/principals/{type}/{name}/roles
func HandleListPrincipalRoles(authorizer authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := principalFromURL(w, r)
		if !ok {
			return
		}

		roles, err := authorizer.ListRoles(r.Context(), principal)
		if err != nil {
			writeError(w, err)
			return
		}

		names := make([]string, 0, len(roles))
		for _, role := range roles {
			names = append(names, role.Name)
		}
		writeJSON(w, http.StatusOK, map[string]any{"roles": names})
	}
}

// principalFromURL extracts the {type}/{name} principal from the request
// path, writing a 400 response when the type is unknown.
func principalFromURL(w http.ResponseWriter, r *http.Request) (authz.Principal, bool) {
	rawType := chi.URLParam(r, "type")
	name := chi.URLParam(r, "name")

	switch authz.PrincipalType(rawType) {
	case authz.PrincipalTypeUser, authz.PrincipalTypeGroup, authz.PrincipalTypeRole:
		return authz.Principal{Name: name, Type: authz.PrincipalType(rawType)}, true
	}

	writeJSONError(w, http.StatusBadRequest, "unknown principal type "+rawType)
	return authz.Principal{}, false
}
