package authz

import (
	"fmt"
	"strings"
)

// PrincipalType identifies the kind of identity subject to authorization.
type PrincipalType string

const (
	// PrincipalTypeUser represents a human or machine identity that makes
	// requests. Enforcement checks are only performed for users.
	PrincipalTypeUser PrincipalType = "user"

	// PrincipalTypeGroup represents a directory group. Roles are assigned
	// to groups; users inherit roles through group membership.
	PrincipalTypeGroup PrincipalType = "group"

	// PrincipalTypeRole represents a named bundle of privileges. Grants and
	// revokes are only performed on roles.
	PrincipalTypeRole PrincipalType = "role"
)

// Principal is an identity (user, group, or role) subject to authorization
// checks.
type Principal struct {
	Name string
	Type PrincipalType
}

func (p Principal) String() string {
	return string(p.Type) + ":" + p.Name
}

// Role is a named, reusable bundle of privileges managed by the policy
// engine.
type Role struct {
	Name string
}

// Action is a permitted operation on an entity.
type Action string

const (
	ActionRead    Action = "read"
	ActionWrite   Action = "write"
	ActionExecute Action = "execute"
	ActionAdmin   Action = "admin"

	// ActionAll implies every other action.
	ActionAll Action = "all"
)

// ParseAction validates and normalizes an action string.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(s))
	switch a {
	case ActionRead, ActionWrite, ActionExecute, ActionAdmin, ActionAll:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// EntityType identifies a level in the entity hierarchy.
type EntityType string

const (
	EntityTypeInstance    EntityType = "instance"
	EntityTypeNamespace   EntityType = "namespace"
	EntityTypeApplication EntityType = "application"
	EntityTypeProgram     EntityType = "program"
	EntityTypeDataset     EntityType = "dataset"
	EntityTypeArtifact    EntityType = "artifact"
)

// EntityRef is a hierarchical reference to an authorizable entity. The
// hierarchy is rendered as a slash-separated path of type/name pairs so a
// privilege on a parent covers all entities beneath it:
//
//	instance/main
//	namespace/prod
//	namespace/prod/application/orders
//	namespace/prod/application/orders/program/ingest
type EntityRef struct {
	Type EntityType

	// segments holds alternating type/name path elements from the root of
	// the hierarchy down to this entity.
	segments []string
}

// InstanceEntity references a whole service instance.
func InstanceEntity(name string) EntityRef {
	return EntityRef{Type: EntityTypeInstance, segments: []string{"instance", name}}
}

// NamespaceEntity references a namespace.
func NamespaceEntity(ns string) EntityRef {
	return EntityRef{Type: EntityTypeNamespace, segments: []string{"namespace", ns}}
}

// ApplicationEntity references an application within a namespace.
func ApplicationEntity(ns, app string) EntityRef {
	return EntityRef{Type: EntityTypeApplication, segments: []string{"namespace", ns, "application", app}}
}

// ProgramEntity references a program within an application.
func ProgramEntity(ns, app, program string) EntityRef {
	return EntityRef{Type: EntityTypeProgram, segments: []string{"namespace", ns, "application", app, "program", program}}
}

// DatasetEntity references a dataset within a namespace.
func DatasetEntity(ns, name string) EntityRef {
	return EntityRef{Type: EntityTypeDataset, segments: []string{"namespace", ns, "dataset", name}}
}

// ArtifactEntity references an artifact within a namespace.
func ArtifactEntity(ns, name string) EntityRef {
	return EntityRef{Type: EntityTypeArtifact, segments: []string{"namespace", ns, "artifact", name}}
}

// Path renders the entity as its hierarchy path.
func (e EntityRef) Path() string {
	return strings.Join(e.segments, "/")
}

// Name returns the entity's own name (the last path element).
func (e EntityRef) Name() string {
	if len(e.segments) == 0 {
		return ""
	}
	return e.segments[len(e.segments)-1]
}

func (e EntityRef) String() string {
	return e.Path()
}

// IsZero reports whether the reference is empty.
func (e EntityRef) IsZero() bool {
	return len(e.segments) == 0
}

// ParseEntityPath parses a hierarchy path produced by Path. Used by the HTTP
// layer and the privilege read path.
func ParseEntityPath(path string) (EntityRef, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || len(parts)%2 != 0 {
		return EntityRef{}, fmt.Errorf("invalid entity path %q", path)
	}
	for i := 0; i < len(parts); i += 2 {
		if parts[i] == "" || parts[i+1] == "" {
			return EntityRef{}, fmt.Errorf("invalid entity path %q", path)
		}
	}

	leafType := parts[len(parts)-2]
	var et EntityType
	switch leafType {
	case "instance":
		et = EntityTypeInstance
	case "namespace":
		et = EntityTypeNamespace
	case "application":
		et = EntityTypeApplication
	case "program":
		et = EntityTypeProgram
	case "dataset":
		et = EntityTypeDataset
	case "artifact":
		et = EntityTypeArtifact
	default:
		return EntityRef{}, fmt.Errorf("unknown entity type %q in path %q", leafType, path)
	}

	return EntityRef{Type: et, segments: parts}, nil
}

// Attributes renders the entity hierarchy as a flat attribute map for scope
// expression evaluation, e.g. {"namespace": "prod", "application": "orders"}
// plus the leaf "type" and "name".
func (e EntityRef) Attributes() map[string]any {
	attrs := make(map[string]any, len(e.segments)/2+2)
	for i := 0; i+1 < len(e.segments); i += 2 {
		attrs[e.segments[i]] = e.segments[i+1]
	}
	attrs["type"] = string(e.Type)
	attrs["name"] = e.Name()
	return attrs
}

// Privilege is an association of an entity with a permitted action. The
// principal holding the privilege is implied by the query that produced it.
type Privilege struct {
	Entity EntityRef
	Action Action
}
