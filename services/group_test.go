package services

import (
	"context"
	"errors"
	"testing"

	"github.com/LuqmanKt98/hangout-app/models"
)

func TestCreateGroupSeedsOwner(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := createUser(t, db, "owner")
	member := createUser(t, db, "member")
	ctx := context.Background()

	group, err := svc.Create(ctx, owner.ID, models.CreateGroupRequest{
		Name:    "climbers",
		Members: []string{member.ID.String(), owner.ID.String()},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if group.MemberCount != 2 {
		t.Fatalf("want 2 members (creator listed once), got %d", group.MemberCount)
	}
	if group.Color != "#6366f1" {
		t.Fatalf("default color not applied: %s", group.Color)
	}

	var ownerRole models.GroupRole
	for _, m := range group.Members {
		if m.UserID == owner.ID {
			ownerRole = m.Role
		}
	}
	if ownerRole != models.RoleOwner {
		t.Fatalf("creator should be owner, got %q", ownerRole)
	}
}

func TestGroupMutationGates(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := createUser(t, db, "owner")
	admin := createUser(t, db, "admin")
	member := createUser(t, db, "member")
	outsider := createUser(t, db, "outsider")
	ctx := context.Background()

	group, err := svc.Create(ctx, owner.ID, models.CreateGroupRequest{Name: "gang"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.AddMember(ctx, owner.ID, group.ID, models.AddGroupMemberRequest{
		UserID: admin.ID.String(), Role: models.RoleAdmin,
	}); err != nil {
		t.Fatalf("add admin: %v", err)
	}

	// Admins can add plain members.
	if err := svc.AddMember(ctx, admin.ID, group.ID, models.AddGroupMemberRequest{
		UserID: member.ID.String(),
	}); err != nil {
		t.Fatalf("admin adds member: %v", err)
	}

	// Plain members and outsiders cannot.
	another := createUser(t, db, "another")
	if err := svc.AddMember(ctx, member.ID, group.ID, models.AddGroupMemberRequest{
		UserID: another.ID.String(),
	}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("member adds: want ErrForbidden, got %v", err)
	}
	if _, err := svc.Update(ctx, outsider.ID, group.ID, models.UpdateGroupRequest{Name: "hijacked"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider update: want ErrForbidden, got %v", err)
	}

	// Adding someone twice conflicts.
	if err := svc.AddMember(ctx, owner.ID, group.ID, models.AddGroupMemberRequest{
		UserID: member.ID.String(),
	}); !errors.Is(err, ErrStorageConflict) {
		t.Fatalf("double add: want ErrStorageConflict, got %v", err)
	}

	// Nobody gets a second owner role.
	if err := svc.AddMember(ctx, owner.ID, group.ID, models.AddGroupMemberRequest{
		UserID: another.ID.String(), Role: models.RoleOwner,
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("owner role grant: want rejection, got %v", err)
	}
}

func TestRemoveMemberRules(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := createUser(t, db, "owner")
	member := createUser(t, db, "member")
	other := createUser(t, db, "other")
	ctx := context.Background()

	group, err := svc.Create(ctx, owner.ID, models.CreateGroupRequest{
		Name:    "gang",
		Members: []string{member.ID.String(), other.ID.String()},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A member can leave on their own.
	if err := svc.RemoveMember(ctx, member.ID, group.ID, member.ID); err != nil {
		t.Fatalf("self leave: %v", err)
	}
	// A member cannot remove someone else.
	if err := svc.RemoveMember(ctx, other.ID, group.ID, owner.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("member removes owner: want ErrForbidden, got %v", err)
	}
	// The creator cannot leave their own group.
	if err := svc.RemoveMember(ctx, owner.ID, group.ID, owner.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("creator leave: want ErrForbidden, got %v", err)
	}
	// The creator can remove others.
	if err := svc.RemoveMember(ctx, owner.ID, group.ID, other.ID); err != nil {
		t.Fatalf("creator removes member: %v", err)
	}
}

func TestRoleChangesAreCreatorOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := createUser(t, db, "owner")
	admin := createUser(t, db, "admin")
	member := createUser(t, db, "member")
	ctx := context.Background()

	group, err := svc.Create(ctx, owner.ID, models.CreateGroupRequest{
		Name:    "gang",
		Members: []string{admin.ID.String(), member.ID.String()},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.UpdateMemberRole(ctx, owner.ID, group.ID, admin.ID, models.RoleAdmin); err != nil {
		t.Fatalf("promote: %v", err)
	}

	// Even an admin cannot change roles.
	if err := svc.UpdateMemberRole(ctx, admin.ID, group.ID, member.ID, models.RoleAdmin); !errors.Is(err, ErrForbidden) {
		t.Fatalf("admin promotes: want ErrForbidden, got %v", err)
	}
	// The creator's own role is fixed.
	if err := svc.UpdateMemberRole(ctx, owner.ID, group.ID, owner.ID, models.RoleMember); !errors.Is(err, ErrForbidden) {
		t.Fatalf("demote creator: want ErrForbidden, got %v", err)
	}
}

func TestDeleteGroupDropsSharesAndMemberships(t *testing.T) {
	db := newTestDB(t)
	groupSvc := NewGroupService(db)
	availSvc := NewAvailabilityService(db, &captureBus{})
	owner := createUser(t, db, "owner")
	member := createUser(t, db, "member")
	ctx := context.Background()

	group, err := groupSvc.Create(ctx, owner.ID, models.CreateGroupRequest{
		Name:    "gang",
		Members: []string{member.ID.String()},
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if _, err := availSvc.Create(ctx, owner.ID, models.CreateAvailabilityRequest{
		Date: "2099-06-01", StartTime: "10:00", EndTime: "12:00", EnergyLevel: models.EnergyHigh,
		GroupIDs: []string{group.ID.String()},
	}); err != nil {
		t.Fatalf("create availability: %v", err)
	}

	// Only the creator may delete.
	if err := groupSvc.Delete(ctx, member.ID, group.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("member delete: want ErrForbidden, got %v", err)
	}
	if err := groupSvc.Delete(ctx, owner.ID, group.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// The group grant died with the group.
	if shared, _ := availSvc.ListSharedWithMe(ctx, member.ID); len(shared) != 0 {
		t.Fatalf("group share should be gone, member still sees %d", len(shared))
	}
	if groups, _ := groupSvc.ListMyGroups(ctx, member.ID); len(groups) != 0 {
		t.Fatalf("membership should be gone")
	}
}
