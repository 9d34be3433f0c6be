package binding

import (
	"context"
	"fmt"
	"sync"

	"github.com/BillTheBest/cdap-security-extn/internal/db/bunx"
	"github.com/BillTheBest/cdap-security-extn/internal/db/models"
	"github.com/BillTheBest/cdap-security-extn/internal/repository"
)

// Mock repositories for testing

type mockRoleRepository struct {
	mu    sync.RWMutex
	roles map[string]models.Role // keyed by ID
}

func newMockRoleRepository() *mockRoleRepository {
	return &mockRoleRepository{roles: make(map[string]models.Role)}
}

func (m *mockRoleRepository) Create(ctx context.Context, role *models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.roles {
		if r.Name == role.Name {
			return fmt.Errorf("insert role: UNIQUE constraint failed: roles.name")
		}
	}
	if role.ID == "" {
		role.ID = bunx.NewUUIDv7()
	}
	if role.Version == 0 {
		role.Version = 1
	}
	m.roles[role.ID] = *role
	return nil
}

func (m *mockRoleRepository) GetByID(ctx context.Context, id string) (*models.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if role, ok := m.roles[id]; ok {
		return &role, nil
	}
	return nil, fmt.Errorf("role %s: %w", id, repository.ErrNotFound)
}

func (m *mockRoleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, role := range m.roles {
		if role.Name == name {
			return &role, nil
		}
	}
	return nil, fmt.Errorf("role %q: %w", name, repository.ErrNotFound)
}

func (m *mockRoleRepository) Update(ctx context.Context, role *models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.roles[role.ID]; !ok {
		return fmt.Errorf("role %s: %w", role.ID, repository.ErrNotFound)
	}
	role.Version++
	m.roles[role.ID] = *role
	return nil
}

func (m *mockRoleRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.roles[id]; !ok {
		return fmt.Errorf("role %s: %w", id, repository.ErrNotFound)
	}
	delete(m.roles, id)
	return nil
}

func (m *mockRoleRepository) List(ctx context.Context) ([]models.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]models.Role, 0, len(m.roles))
	for _, role := range m.roles {
		result = append(result, role)
	}
	return result, nil
}

type mockGroupRoleRepository struct {
	mu      sync.RWMutex
	records []models.GroupRole
}

func (m *mockGroupRoleRepository) Create(ctx context.Context, assignment *models.GroupRole) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, gr := range m.records {
		if gr.GroupName == assignment.GroupName && gr.RoleID == assignment.RoleID {
			return fmt.Errorf("insert group role: UNIQUE constraint failed: group_roles.group_name")
		}
	}
	if assignment.ID == "" {
		assignment.ID = bunx.NewUUIDv7()
	}
	m.records = append(m.records, *assignment)
	return nil
}

func (m *mockGroupRoleRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, gr := range m.records {
		if gr.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockGroupRoleRepository) DeleteByGroupAndRole(ctx context.Context, groupName, roleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, gr := range m.records {
		if gr.GroupName == groupName && gr.RoleID == roleID {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("assignment of role %s to group %q: %w", roleID, groupName, repository.ErrNotFound)
}

func (m *mockGroupRoleRepository) DeleteByRoleID(ctx context.Context, roleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []models.GroupRole
	for _, gr := range m.records {
		if gr.RoleID != roleID {
			kept = append(kept, gr)
		}
	}
	m.records = kept
	return nil
}

func (m *mockGroupRoleRepository) GetByGroupName(ctx context.Context, groupName string) ([]models.GroupRole, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []models.GroupRole
	for _, gr := range m.records {
		if gr.GroupName == groupName {
			result = append(result, gr)
		}
	}
	return result, nil
}

func (m *mockGroupRoleRepository) List(ctx context.Context) ([]models.GroupRole, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]models.GroupRole, len(m.records))
	copy(result, m.records)
	return result, nil
}

type mockGroupMemberRepository struct {
	mu      sync.RWMutex
	records []models.GroupMember
}

func (m *mockGroupMemberRepository) Create(ctx context.Context, member *models.GroupMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, gm := range m.records {
		if gm.GroupName == member.GroupName && gm.UserName == member.UserName {
			return fmt.Errorf("insert group member: UNIQUE constraint failed: group_members.group_name")
		}
	}
	if member.ID == "" {
		member.ID = bunx.NewUUIDv7()
	}
	m.records = append(m.records, *member)
	return nil
}

func (m *mockGroupMemberRepository) DeleteByGroupAndUser(ctx context.Context, groupName, userName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, gm := range m.records {
		if gm.GroupName == groupName && gm.UserName == userName {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("membership of %q in group %q: %w", userName, groupName, repository.ErrNotFound)
}

func (m *mockGroupMemberRepository) ListByGroup(ctx context.Context, groupName string) ([]models.GroupMember, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []models.GroupMember
	for _, gm := range m.records {
		if gm.GroupName == groupName {
			result = append(result, gm)
		}
	}
	return result, nil
}

func (m *mockGroupMemberRepository) ListGroupsForUser(ctx context.Context, userName string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []string
	for _, gm := range m.records {
		if gm.UserName == userName {
			result = append(result, gm.GroupName)
		}
	}
	return result, nil
}
