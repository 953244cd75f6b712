package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/LuqmanKt98/hangout-app/models"
	"github.com/LuqmanKt98/hangout-app/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GroupService manages friend groups and their memberships. Mutations are
// gated to the creator or an admin; role changes are creator-only.
type GroupService struct {
	db *gorm.DB
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{db: db}
}

func (s *GroupService) Create(ctx context.Context, creatorID uuid.UUID, req models.CreateGroupRequest) (*models.GroupResponse, error) {
	memberIDs, err := utils.ParseUUIDs(req.Members)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	group := models.Group{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   creatorID,
	}
	if req.Color != "" {
		group.Color = req.Color
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		owner := models.GroupMember{GroupID: group.ID, UserID: creatorID, Role: models.RoleOwner}
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}
		for _, id := range memberIDs {
			if id == creatorID {
				continue
			}
			m := models.GroupMember{GroupID: group.ID, UserID: id, Role: models.RoleMember}
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, creatorID, group.ID)
}

func (s *GroupService) Get(ctx context.Context, userID, groupID uuid.UUID) (*models.GroupResponse, error) {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if s.roleOf(group, userID) == "" {
		return nil, ErrNotFound
	}
	return s.toResponse(ctx, group)
}

func (s *GroupService) load(ctx context.Context, groupID uuid.UUID) (*models.Group, error) {
	var group models.Group
	err := s.db.WithContext(ctx).Preload("Members").Preload("Members.User").
		First(&group, "id = ?", groupID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (s *GroupService) roleOf(group *models.Group, userID uuid.UUID) models.GroupRole {
	for _, m := range group.Members {
		if m.UserID == userID {
			return m.Role
		}
	}
	return ""
}

func (s *GroupService) canManage(group *models.Group, userID uuid.UUID) bool {
	role := s.roleOf(group, userID)
	return role == models.RoleOwner || role == models.RoleAdmin
}

func (s *GroupService) Update(ctx context.Context, userID, groupID uuid.UUID, req models.UpdateGroupRequest) (*models.GroupResponse, error) {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !s.canManage(group, userID) {
		return nil, ErrForbidden
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Color != "" {
		updates["color"] = req.Color
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Group{}).Where("id = ?", groupID).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	group, err = s.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, group)
}

// Delete removes the group, its memberships, and any availability shares
// that pointed at it. Creator only.
func (s *GroupService) Delete(ctx context.Context, userID, groupID uuid.UUID) error {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}
	if group.CreatedBy != userID {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shared_with_group_id = ?", groupID).Delete(&models.AvailabilityShare{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, "id = ?", groupID).Error
	})
}

func (s *GroupService) AddMember(ctx context.Context, actorID, groupID uuid.UUID, req models.AddGroupMemberRequest) error {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}
	if !s.canManage(group, actorID) {
		return ErrForbidden
	}

	newUserID, err := uuid.Parse(req.UserID)
	if err != nil {
		return fmt.Errorf("%w: bad user id", ErrInvalidInput)
	}
	if s.roleOf(group, newUserID) != "" {
		return ErrStorageConflict
	}

	role := req.Role
	if role == "" {
		role = models.RoleMember
	}
	if role == models.RoleOwner || !role.Valid() {
		return fmt.Errorf("%w: bad role %q", ErrInvalidInput, req.Role)
	}

	member := models.GroupMember{GroupID: groupID, UserID: newUserID, Role: role}
	return s.db.WithContext(ctx).Create(&member).Error
}

// RemoveMember removes a membership. Admins and the creator can remove
// others; any member can remove themselves. The creator cannot leave.
func (s *GroupService) RemoveMember(ctx context.Context, actorID, groupID, targetID uuid.UUID) error {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}
	if targetID == group.CreatedBy {
		return ErrForbidden
	}
	if actorID != targetID && !s.canManage(group, actorID) {
		return ErrForbidden
	}
	if s.roleOf(group, targetID) == "" {
		return ErrNotFound
	}

	return s.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, targetID).
		Delete(&models.GroupMember{}).Error
}

func (s *GroupService) UpdateMemberRole(ctx context.Context, actorID, groupID, targetID uuid.UUID, role models.GroupRole) error {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}
	if group.CreatedBy != actorID {
		return ErrForbidden
	}
	if targetID == group.CreatedBy {
		return ErrForbidden
	}
	if role == models.RoleOwner || !role.Valid() {
		return fmt.Errorf("%w: bad role %q", ErrInvalidInput, role)
	}
	if s.roleOf(group, targetID) == "" {
		return ErrNotFound
	}

	return s.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, targetID).
		Update("role", role).Error
}

func (s *GroupService) ListMyGroups(ctx context.Context, userID uuid.UUID) ([]models.GroupResponse, error) {
	var groupIDs []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &groupIDs).Error
	if err != nil {
		return nil, err
	}
	if len(groupIDs) == 0 {
		return []models.GroupResponse{}, nil
	}

	var groups []models.Group
	err = s.db.WithContext(ctx).Preload("Members").Preload("Members.User").
		Where("id IN ?", groupIDs).
		Order("name asc").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.GroupResponse, 0, len(groups))
	for i := range groups {
		resp, err := s.toResponse(ctx, &groups[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

func (s *GroupService) toResponse(ctx context.Context, group *models.Group) (*models.GroupResponse, error) {
	members := make([]models.GroupMemberResponse, 0, len(group.Members))
	for _, m := range group.Members {
		members = append(members, models.GroupMemberResponse{
			UserID:      m.UserID,
			DisplayName: m.User.DisplayName,
			AvatarURL:   m.User.AvatarURL,
			Role:        m.Role,
			JoinedAt:    m.JoinedAt,
		})
	}
	return &models.GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		Color:       group.Color,
		CreatedBy:   group.CreatedBy,
		Members:     members,
		MemberCount: len(members),
		CreatedAt:   group.CreatedAt,
	}, nil
}
