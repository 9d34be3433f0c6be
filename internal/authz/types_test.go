package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"read", "write", "execute", "admin", "all"} {
		action, err := ParseAction(s)
		require.NoError(t, err)
		assert.Equal(t, Action(s), action)
	}

	// Case-insensitive
	action, err := ParseAction("READ")
	require.NoError(t, err)
	assert.Equal(t, ActionRead, action)

	_, err = ParseAction("delete")
	assert.Error(t, err)
	_, err = ParseAction("")
	assert.Error(t, err)
}

func TestEntityRefPaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		entity   EntityRef
		wantPath string
		wantName string
	}{
		{InstanceEntity("main"), "instance/main", "main"},
		{NamespaceEntity("prod"), "namespace/prod", "prod"},
		{ApplicationEntity("prod", "orders"), "namespace/prod/application/orders", "orders"},
		{ProgramEntity("prod", "orders", "ingest"), "namespace/prod/application/orders/program/ingest", "ingest"},
		{DatasetEntity("prod", "events"), "namespace/prod/dataset/events", "events"},
		{ArtifactEntity("prod", "etl-lib"), "namespace/prod/artifact/etl-lib", "etl-lib"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.wantPath, tt.entity.Path())
		assert.Equal(t, tt.wantName, tt.entity.Name())
		assert.False(t, tt.entity.IsZero())
	}

	assert.True(t, EntityRef{}.IsZero())
}

func TestParseEntityPath(t *testing.T) {
	t.Parallel()

	entity, err := ParseEntityPath("namespace/prod/application/orders")
	require.NoError(t, err)
	assert.Equal(t, EntityTypeApplication, entity.Type)
	assert.Equal(t, "orders", entity.Name())
	assert.Equal(t, "namespace/prod/application/orders", entity.Path())

	// Leading and trailing slashes are tolerated.
	entity, err = ParseEntityPath("/namespace/prod/")
	require.NoError(t, err)
	assert.Equal(t, EntityTypeNamespace, entity.Type)

	for _, bad := range []string{
		"",
		"namespace",
		"namespace/prod/application",
		"namespace//application/orders",
		"widget/prod",
	} {
		_, err := ParseEntityPath(bad)
		assert.Error(t, err, "path %q should not parse", bad)
	}
}

func TestEntityRefAttributes(t *testing.T) {
	t.Parallel()

	attrs := ProgramEntity("prod", "orders", "ingest").Attributes()
	assert.Equal(t, map[string]any{
		"namespace":   "prod",
		"application": "orders",
		"program":     "ingest",
		"type":        "program",
		"name":        "ingest",
	}, attrs)
}
