package binding

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/uptrace/bun"

	"github.com/BillTheBest/cdap-security-extn/internal/binding/bunadapter"
)

//go:embed model.conf
var policyModel string

// InitEnforcer creates and initializes a Casbin enforcer with the embedded
// model and the bun database adapter, sharing the service's *bun.DB
// connection pool.
func InitEnforcer(db *bun.DB) (casbin.IEnforcer, error) {
	adapter, err := bunadapter.NewAdapter(db)
	if err != nil {
		return nil, fmt.Errorf("create policy adapter: %w", err)
	}

	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("parse policy model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}

	registerMatchFunctions(enforcer)

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load policies: %w", err)
	}

	return enforcer, nil
}

// NewMemoryEnforcer creates an enforcer with no persistence. Used by tests.
func NewMemoryEnforcer() (casbin.IEnforcer, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("parse policy model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}

	registerMatchFunctions(enforcer)
	return enforcer, nil
}

func registerMatchFunctions(enforcer casbin.IEnforcer) {
	// entityMatch implements hierarchy inheritance: a privilege on a parent
	// entity path covers every entity beneath it.
	enforcer.AddFunction("entityMatch", EntityMatchFunction())

	// scopeMatch evaluates go-bexpr scope expressions against entity
	// attributes.
	enforcer.AddFunction("scopeMatch", ScopeMatchFunction())
}

// EntityMatchFunction returns the entityMatch function registered on the
// enforcer. The request path matches a policy path when they are equal or
// when the policy path is an ancestor in the entity hierarchy.
func EntityMatchFunction() func(args ...any) (any, error) {
	return func(args ...any) (any, error) {
		if len(args) != 2 {
			return false, fmt.Errorf("entityMatch requires 2 arguments: requestPath, policyPath")
		}

		requestPath, ok := args[0].(string)
		if !ok {
			return false, fmt.Errorf("entityMatch: first argument must be string (requestPath)")
		}

		policyPath, ok := args[1].(string)
		if !ok {
			return false, fmt.Errorf("entityMatch: second argument must be string (policyPath)")
		}

		return EntityMatch(requestPath, policyPath), nil
	}
}

// EntityMatch reports whether a privilege on policyPath covers requestPath.
func EntityMatch(requestPath, policyPath string) bool {
	if requestPath == policyPath {
		return true
	}
	return strings.HasPrefix(requestPath, policyPath+"/")
}
