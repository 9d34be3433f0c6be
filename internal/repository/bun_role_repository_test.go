package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/BillTheBest/cdap-security-extn/internal/db/bunx"
	"github.com/BillTheBest/cdap-security-extn/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database with the authorization
// tables.
func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := bunx.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = bunx.Close(db) })

	ctx := context.Background()
	for _, model := range []any{
		(*models.Role)(nil),
		(*models.GroupRole)(nil),
		(*models.GroupMember)(nil),
	} {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}

	_, err = db.ExecContext(ctx, `CREATE UNIQUE INDEX IF NOT EXISTS idx_roles_name ON roles(name)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE UNIQUE INDEX IF NOT EXISTS idx_group_roles_group_role ON group_roles (group_name, role_id)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE UNIQUE INDEX IF NOT EXISTS idx_group_members_group_user ON group_members (group_name, user_name)`)
	require.NoError(t, err)

	return db
}

func TestBunRoleRepository_CRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunRoleRepository(db)
	ctx := context.Background()

	role := &models.Role{Name: "operator", Description: "ops role"}
	require.NoError(t, repo.Create(ctx, role))
	require.NotEmpty(t, role.ID)
	assert.Equal(t, 1, role.Version)

	// Duplicate name violates the unique index.
	err := repo.Create(ctx, &models.Role{Name: "operator"})
	assert.Error(t, err)

	byID, err := repo.GetByID(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, "operator", byID.Name)

	byName, err := repo.GetByName(ctx, "operator")
	require.NoError(t, err)
	assert.Equal(t, role.ID, byName.ID)

	_, err = repo.GetByName(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	byID.Description = "updated"
	require.NoError(t, repo.Update(ctx, byID))
	assert.Equal(t, 2, byID.Version)

	updated, err := repo.GetByID(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated", updated.Description)

	roles, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 1)

	require.NoError(t, repo.Delete(ctx, role.ID))
	err = repo.Delete(ctx, role.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBunGroupRoleRepository(t *testing.T) {
	db := setupTestDB(t)
	roleRepo := NewBunRoleRepository(db)
	repo := NewBunGroupRoleRepository(db)
	ctx := context.Background()

	role := &models.Role{Name: "operator"}
	require.NoError(t, roleRepo.Create(ctx, role))

	assignment := &models.GroupRole{GroupName: "eng", RoleID: role.ID}
	require.NoError(t, repo.Create(ctx, assignment))
	require.NotEmpty(t, assignment.ID)

	// Duplicate assignment violates the unique index.
	err := repo.Create(ctx, &models.GroupRole{GroupName: "eng", RoleID: role.ID})
	assert.Error(t, err)

	byGroup, err := repo.GetByGroupName(ctx, "eng")
	require.NoError(t, err)
	require.Len(t, byGroup, 1)
	assert.Equal(t, role.ID, byGroup[0].RoleID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.DeleteByGroupAndRole(ctx, "eng", role.ID))
	err = repo.DeleteByGroupAndRole(ctx, "eng", role.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// DeleteByRoleID clears everything for a dropped role.
	require.NoError(t, repo.Create(ctx, &models.GroupRole{GroupName: "eng", RoleID: role.ID}))
	require.NoError(t, repo.Create(ctx, &models.GroupRole{GroupName: "ops", RoleID: role.ID}))
	require.NoError(t, repo.DeleteByRoleID(ctx, role.ID))

	all, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestBunGroupMemberRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunGroupMemberRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.GroupMember{GroupName: "eng", UserName: "alice"}))
	require.NoError(t, repo.Create(ctx, &models.GroupMember{GroupName: "eng", UserName: "bob"}))
	require.NoError(t, repo.Create(ctx, &models.GroupMember{GroupName: "ops", UserName: "alice"}))

	err := repo.Create(ctx, &models.GroupMember{GroupName: "eng", UserName: "alice"})
	assert.Error(t, err)

	members, err := repo.ListByGroup(ctx, "eng")
	require.NoError(t, err)
	assert.Len(t, members, 2)

	groups, err := repo.ListGroupsForUser(ctx, "alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"eng", "ops"}, groups)

	require.NoError(t, repo.DeleteByGroupAndUser(ctx, "eng", "alice"))
	err = repo.DeleteByGroupAndUser(ctx, "eng", "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}
