package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/BillTheBest/cdap-security-extn/internal/authz"
)

// RouterOptions controls the construction of the HTTP router. The zero value
// is invalid: Authorizer and Admin must be set.
type RouterOptions struct {
	Authorizer    authz.Authorizer
	Admin         adminService
	CORSOptions   *cors.Options
	Middleware    []func(http.Handler) http.Handler
	HealthHandler http.HandlerFunc
}

// DefaultCORSOptions returns the shared development CORS policy.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NewRouter assembles a chi.Router with shared middleware, CORS policy, and
// the authorization handlers mounted.
func NewRouter(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	// Baseline middleware shared across entrypoints.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	health := opts.HealthHandler
	if health == nil {
		health = defaultHealthHandler
	}
	r.Get("/healthz", health)

	r.Route("/v1", func(r chi.Router) {
		// Role management
		r.Post("/roles", HandleCreateRole(opts.Admin))
		r.Get("/roles", HandleListRoles(opts.Authorizer))
		r.Get("/roles/{name}", HandleGetRole(opts.Admin))
		r.Delete("/roles/{name}", HandleDropRole(opts.Authorizer))
		r.Post("/roles/{name}/groups", HandleAssignRole(opts.Authorizer))
		r.Delete("/roles/{name}/groups/{group}", HandleUnassignRole(opts.Authorizer))

		// Privileges
		r.Post("/grants", HandleGrant(opts.Authorizer))
		r.Post("/revokes", HandleRevoke(opts.Authorizer))
		r.Post("/revoke-all", HandleRevokeAll(opts.Authorizer))

		// Principal lookups
		r.Get("/principals/{type}/{name}/roles", HandleListPrincipalRoles(opts.Authorizer))
		r.Get("/principals/{type}/{name}/privileges", HandleListPrivileges(opts.Authorizer))

		// Enforcement
		r.Post("/enforce", HandleEnforce(opts.Authorizer))

		// Group membership
		r.Post("/groups/{group}/members", HandleAddGroupMember(opts.Admin))
		r.Delete("/groups/{group}/members/{user}", HandleRemoveGroupMember(opts.Admin))
		r.Get("/groups/{group}/members", HandleListGroupMembers(opts.Admin))
		r.Get("/users/{user}/groups", HandleListUserGroups(opts.Admin))
	})

	r.Post("/admin/cache/refresh", HandleCacheRefresh(opts.Admin))

	return r
}
