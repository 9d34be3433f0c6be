package binding

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-bexpr"
)

// scopeCache stores compiled go-bexpr evaluators keyed by expression string.
var scopeCache = &sync.Map{}

// ScopeMatchFunction returns the scopeMatch function registered on the
// enforcer. It evaluates a role's go-bexpr scope expression against the
// attributes of the entity being authorized.
func ScopeMatchFunction() func(args ...any) (any, error) {
	return func(args ...any) (any, error) {
		if len(args) != 2 {
			return false, fmt.Errorf("scopeMatch requires 2 arguments: scopeExpr, attrs")
		}

		scopeExpr, ok := args[0].(string)
		if !ok {
			return false, fmt.Errorf("scopeMatch: first argument must be string (scopeExpr)")
		}

		attrs, ok := args[1].(map[string]any)
		if !ok {
			return false, fmt.Errorf("scopeMatch: second argument must be map[string]any (attrs)")
		}

		return EvaluateScope(scopeExpr, attrs), nil
	}
}

// EvaluateScope evaluates a go-bexpr expression against entity attributes.
// An empty expression means no constraint. Compiled evaluators are cached.
func EvaluateScope(scopeExpr string, attrs map[string]any) bool {
	if strings.TrimSpace(scopeExpr) == "" {
		return true
	}

	if cached, ok := scopeCache.Load(scopeExpr); ok {
		return evaluate(cached.(*bexpr.Evaluator), attrs)
	}

	evaluator, err := bexpr.CreateEvaluator(scopeExpr)
	if err != nil {
		// Invalid expressions deny access. CreateRole validates syntax up
		// front, so this only happens for rows written outside the service.
		return false
	}
	scopeCache.Store(scopeExpr, evaluator)

	return evaluate(evaluator, attrs)
}

// ValidateScope checks a scope expression for valid go-bexpr syntax.
func ValidateScope(scopeExpr string) error {
	if strings.TrimSpace(scopeExpr) == "" {
		return nil
	}
	if _, err := bexpr.CreateEvaluator(scopeExpr); err != nil {
		return fmt.Errorf("invalid scope expression: %w", err)
	}
	return nil
}

func evaluate(evaluator *bexpr.Evaluator, attrs map[string]any) bool {
	matches, err := evaluator.Evaluate(attrs)
	if err != nil {
		// Evaluation failure (e.g. attribute missing) denies access.
		return false
	}
	return matches
}
