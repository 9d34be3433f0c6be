package binding

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/BillTheBest/cdap-security-extn/internal/repository"
)

// GroupRoleSnapshot is an immutable snapshot of group→role mappings. Stored
// in an atomic.Value and never modified after creation; updates build a new
// snapshot and swap the pointer.
type GroupRoleSnapshot struct {
	// Mappings: groupName → []roleName
	Mappings map[string][]string

	// CreatedAt is when this snapshot was built.
	CreatedAt time.Time

	// Version is an incrementing counter for debugging.
	Version int
}

// GroupRoleCache provides lock-free access to group→role mappings for the
// role-listing read path. Assignment mutations rebuild the snapshot; readers
// see either the old or the new snapshot atomically, never a partial update.
type GroupRoleCache struct {
	snapshot   atomic.Value // holds *GroupRoleSnapshot
	groupRoles repository.GroupRoleRepository
	roles      repository.RoleRepository
}

// NewGroupRoleCache creates the cache and performs the initial load. The
// initial load must succeed before the service can start.
func NewGroupRoleCache(groupRoles repository.GroupRoleRepository, roles repository.RoleRepository) (*GroupRoleCache, error) {
	cache := &GroupRoleCache{
		groupRoles: groupRoles,
		roles:      roles,
	}

	if err := cache.Refresh(context.Background()); err != nil {
		return nil, fmt.Errorf("initial cache load: %w", err)
	}
	return cache, nil
}

// Get returns the current snapshot for lock-free reads.
func (c *GroupRoleCache) Get() *GroupRoleSnapshot {
	val := c.snapshot.Load()
	if val == nil {
		return nil
	}
	return val.(*GroupRoleSnapshot)
}

// Refresh rebuilds the cache from the database and atomically swaps the
// snapshot. Out-of-band operation; safe to call concurrently with Get.
func (c *GroupRoleCache) Refresh(ctx context.Context) error {
	assignments, err := c.groupRoles.List(ctx)
	if err != nil {
		return fmt.Errorf("list group roles: %w", err)
	}

	newMappings := make(map[string][]string)
	roleNames := make(map[string]string) // roleID → roleName

	for _, assignment := range assignments {
		name, ok := roleNames[assignment.RoleID]
		if !ok {
			role, err := c.roles.GetByID(ctx, assignment.RoleID)
			if err != nil {
				return fmt.Errorf("get role %s: %w", assignment.RoleID, err)
			}
			name = role.Name
			roleNames[assignment.RoleID] = name
		}
		newMappings[assignment.GroupName] = append(newMappings[assignment.GroupName], name)
	}

	prevVersion := 0
	if prev := c.snapshot.Load(); prev != nil {
		prevVersion = prev.(*GroupRoleSnapshot).Version
	}

	c.snapshot.Store(&GroupRoleSnapshot{
		Mappings:  newMappings,
		CreatedAt: time.Now(),
		Version:   prevVersion + 1,
	})

	return nil
}

// RolesForGroup returns the role names assigned to a group. Lock-free, no
// database queries.
func (c *GroupRoleCache) RolesForGroup(group string) []string {
	snapshot := c.Get()
	if snapshot == nil {
		return nil
	}

	roles := snapshot.Mappings[group]
	result := make([]string, len(roles))
	copy(result, roles)
	return result
}
