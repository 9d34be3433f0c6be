package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifiers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "user:alice", UserID("alice"))
	assert.Equal(t, "group:analysts", GroupID("analysts"))
	assert.Equal(t, "role:main/operator", RoleID("main", "operator"))
}

func TestRoleName(t *testing.T) {
	t.Parallel()

	name, err := RoleName("main", "role:main/operator")
	require.NoError(t, err)
	assert.Equal(t, "operator", name)

	// Another instance's role
	_, err = RoleName("main", "role:other/operator")
	assert.Error(t, err)

	// Not a role identifier
	_, err = RoleName("main", "group:analysts")
	assert.Error(t, err)
}

func TestIsRoleID(t *testing.T) {
	t.Parallel()

	assert.True(t, IsRoleID("main", "role:main/operator"))
	assert.False(t, IsRoleID("main", "role:other/operator"))
	assert.False(t, IsRoleID("main", "group:analysts"))
	assert.False(t, IsRoleID("main", "user:alice"))
}
