package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BillTheBest/cdap-security-extn/internal/authz"
	"github.com/BillTheBest/cdap-security-extn/internal/binding"
	"github.com/BillTheBest/cdap-security-extn/internal/db/models"
)

// stubAuthorizer returns canned results per operation.
type stubAuthorizer struct {
	grantErr   error
	enforceErr error

	roles      []authz.Role
	privileges []authz.Privilege

	lastEntity  authz.EntityRef
	lastActions []authz.Action
}

func (s *stubAuthorizer) Grant(ctx context.Context, entity authz.EntityRef, principal authz.Principal, actions []authz.Action) error {
	s.lastEntity = entity
	s.lastActions = actions
	return s.grantErr
}

func (s *stubAuthorizer) Revoke(ctx context.Context, entity authz.EntityRef, principal authz.Principal, actions []authz.Action) error {
	return s.grantErr
}

func (s *stubAuthorizer) RevokeAll(ctx context.Context, entity authz.EntityRef) error {
	s.lastEntity = entity
	return nil
}

func (s *stubAuthorizer) ListPrivileges(ctx context.Context, principal authz.Principal) ([]authz.Privilege, error) {
	return s.privileges, nil
}

func (s *stubAuthorizer) CreateRole(ctx context.Context, role authz.Role) error { return nil }
func (s *stubAuthorizer) DropRole(ctx context.Context, role authz.Role) error   { return nil }

func (s *stubAuthorizer) AddRoleToPrincipal(ctx context.Context, role authz.Role, principal authz.Principal) error {
	return nil
}

func (s *stubAuthorizer) RemoveRoleFromPrincipal(ctx context.Context, role authz.Role, principal authz.Principal) error {
	return nil
}

func (s *stubAuthorizer) ListRoles(ctx context.Context, principal authz.Principal) ([]authz.Role, error) {
	if principal.Type == authz.PrincipalTypeRole {
		return nil, &authz.InvalidPrincipalTypeError{
			Principal: principal,
			Allowed:   []authz.PrincipalType{authz.PrincipalTypeUser, authz.PrincipalTypeGroup},
		}
	}
	return s.roles, nil
}

func (s *stubAuthorizer) ListAllRoles(ctx context.Context) ([]authz.Role, error) {
	return s.roles, nil
}

func (s *stubAuthorizer) Enforce(ctx context.Context, entity authz.EntityRef, principal authz.Principal, action authz.Action) error {
	return s.enforceErr
}

// stubAdmin implements the adminService contract in memory.
type stubAdmin struct {
	roles       map[string]*models.Role
	members     map[string][]string
	refreshed   bool
	createError error
}

func newStubAdmin() *stubAdmin {
	return &stubAdmin{
		roles:   make(map[string]*models.Role),
		members: make(map[string][]string),
	}
}

func (s *stubAdmin) CreateRoleDetailed(ctx context.Context, name, description, scopeExpr string) error {
	if s.createError != nil {
		return s.createError
	}
	if _, ok := s.roles[name]; ok {
		return fmt.Errorf("role %q: %w", name, authz.ErrRoleExists)
	}
	s.roles[name] = &models.Role{Name: name, Description: description, ScopeExpr: scopeExpr, Version: 1}
	return nil
}

func (s *stubAdmin) RoleDetails(ctx context.Context, name string) (*models.Role, error) {
	if role, ok := s.roles[name]; ok {
		return role, nil
	}
	return nil, fmt.Errorf("role %q: %w", name, authz.ErrRoleNotFound)
}

func (s *stubAdmin) AddGroupMember(ctx context.Context, group, user string) error {
	s.members[group] = append(s.members[group], user)
	return nil
}

func (s *stubAdmin) RemoveGroupMember(ctx context.Context, group, user string) error {
	kept := s.members[group][:0]
	for _, u := range s.members[group] {
		if u != user {
			kept = append(kept, u)
		}
	}
	s.members[group] = kept
	return nil
}

func (s *stubAdmin) ListGroupMembers(ctx context.Context, group string) ([]string, error) {
	return s.members[group], nil
}

func (s *stubAdmin) GroupsForUser(ctx context.Context, user string) ([]string, error) {
	var groups []string
	for group, users := range s.members {
		for _, u := range users {
			if u == user {
				groups = append(groups, group)
			}
		}
	}
	return groups, nil
}

func (s *stubAdmin) RefreshCache(ctx context.Context) error {
	s.refreshed = true
	return nil
}

func (s *stubAdmin) CacheSnapshot() binding.GroupRoleSnapshot {
	return binding.GroupRoleSnapshot{
		Mappings:  map[string][]string{"eng": {"operator"}},
		CreatedAt: time.Now(),
		Version:   3,
	}
}

func newTestServer(authorizer authz.Authorizer, admin adminService) *httptest.Server {
	return httptest.NewServer(NewRouter(RouterOptions{
		Authorizer: authorizer,
		Admin:      admin,
	}))
}

func doJSON(t *testing.T, method, url, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	ts := newTestServer(&stubAuthorizer{}, newStubAdmin())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateRoleHandler(t *testing.T) {
	t.Parallel()

	admin := newStubAdmin()
	ts := newTestServer(&stubAuthorizer{}, admin)
	defer ts.Close()

	resp := doJSON(t, http.MethodPost, ts.URL+"/v1/roles",
		`{"name":"operator","description":"ops role","scope_expr":"namespace == \"prod\""}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	role, err := admin.RoleDetails(context.Background(), "operator")
	require.NoError(t, err)
	assert.Equal(t, "ops role", role.Description)

	// Duplicate creation conflicts.
	resp = doJSON(t, http.MethodPost, ts.URL+"/v1/roles", `{"name":"operator"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Missing name.
	resp = doJSON(t, http.MethodPost, ts.URL+"/v1/roles", `{"description":"x"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetRoleHandler_NotFound(t *testing.T) {
	t.Parallel()

	ts := newTestServer(&stubAuthorizer{}, newStubAdmin())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/roles/ghost")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListRolesHandler(t *testing.T) {
	t.Parallel()

	stub := &stubAuthorizer{roles: []authz.Role{{Name: "operator"}, {Name: "viewer"}}}
	ts := newTestServer(stub, newStubAdmin())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/roles")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Roles []string `json:"roles"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"operator", "viewer"}, body.Roles)
}

func TestGrantHandler(t *testing.T) {
	t.Parallel()

	stub := &stubAuthorizer{}
	ts := newTestServer(stub, newStubAdmin())
	defer ts.Close()

	resp := doJSON(t, http.MethodPost, ts.URL+"/v1/grants",
		`{"entity":"namespace/prod","role":"operator","actions":["read","write"]}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "namespace/prod", stub.lastEntity.Path())
	assert.Equal(t, []authz.Action{authz.ActionRead, authz.ActionWrite}, stub.lastActions)

	// Bad entity path.
	resp = doJSON(t, http.MethodPost, ts.URL+"/v1/grants",
		`{"entity":"bogus","role":"operator","actions":["read"]}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown action.
	resp = doJSON(t, http.MethodPost, ts.URL+"/v1/grants",
		`{"entity":"namespace/prod","role":"operator","actions":["fly"]}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown role surfaces as 404.
	stub.grantErr = fmt.Errorf("role %q: %w", "ghost", authz.ErrRoleNotFound)
	resp = doJSON(t, http.MethodPost, ts.URL+"/v1/grants",
		`{"entity":"namespace/prod","role":"ghost","actions":["read"]}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEnforceHandler(t *testing.T) {
	t.Parallel()

	t.Run("allowed", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(&stubAuthorizer{}, newStubAdmin())
		defer ts.Close()

		resp := doJSON(t, http.MethodPost, ts.URL+"/v1/enforce",
			`{"entity":"namespace/prod","user":"alice","action":"read"}`)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Allowed bool `json:"allowed"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Allowed)
	})

	t.Run("denied", func(t *testing.T) {
		t.Parallel()
		stub := &stubAuthorizer{enforceErr: &authz.UnauthorizedError{
			Principal: authz.Principal{Name: "alice", Type: authz.PrincipalTypeUser},
			Action:    authz.ActionWrite,
			Entity:    authz.NamespaceEntity("prod"),
		}}
		ts := newTestServer(stub, newStubAdmin())
		defer ts.Close()

		resp := doJSON(t, http.MethodPost, ts.URL+"/v1/enforce",
			`{"entity":"namespace/prod","user":"alice","action":"write"}`)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("missing user", func(t *testing.T) {
		t.Parallel()
		ts := newTestServer(&stubAuthorizer{}, newStubAdmin())
		defer ts.Close()

		resp := doJSON(t, http.MethodPost, ts.URL+"/v1/enforce",
			`{"entity":"namespace/prod","action":"read"}`)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestListPrincipalRolesHandler(t *testing.T) {
	t.Parallel()

	stub := &stubAuthorizer{roles: []authz.Role{{Name: "operator"}}}
	ts := newTestServer(stub, newStubAdmin())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/principals/user/alice/roles")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Role principals are rejected with 400 by the precondition.
	resp, err = http.Get(ts.URL + "/v1/principals/role/operator/roles")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown principal type.
	resp, err = http.Get(ts.URL + "/v1/principals/robot/r2d2/roles")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListPrivilegesHandler(t *testing.T) {
	t.Parallel()

	stub := &stubAuthorizer{privileges: []authz.Privilege{
		{Entity: authz.NamespaceEntity("prod"), Action: authz.ActionRead},
	}}
	ts := newTestServer(stub, newStubAdmin())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/principals/user/alice/privileges")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Privileges []struct {
			Entity string `json:"entity"`
			Action string `json:"action"`
		} `json:"privileges"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Privileges, 1)
	assert.Equal(t, "namespace/prod", body.Privileges[0].Entity)
	assert.Equal(t, "read", body.Privileges[0].Action)
}

func TestGroupMembershipHandlers(t *testing.T) {
	t.Parallel()

	admin := newStubAdmin()
	ts := newTestServer(&stubAuthorizer{}, admin)
	defer ts.Close()

	resp := doJSON(t, http.MethodPost, ts.URL+"/v1/groups/eng/members", `{"user":"alice"}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err := http.Get(ts.URL + "/v1/groups/eng/members")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Members []string `json:"members"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"alice"}, body.Members)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/v1/groups/eng/members/alice", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, admin.members["eng"])
}

func TestCacheRefreshHandler(t *testing.T) {
	t.Parallel()

	admin := newStubAdmin()
	ts := newTestServer(&stubAuthorizer{}, admin)
	defer ts.Close()

	resp := doJSON(t, http.MethodPost, ts.URL+"/admin/cache/refresh", "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, admin.refreshed)

	var body struct {
		Status  string `json:"status"`
		Version int    `json:"version"`
		Groups  int    `json:"groups"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, 3, body.Version)
	assert.Equal(t, 1, body.Groups)
}
