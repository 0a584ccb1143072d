package rest

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Shritej1000/Spiltzee/internal/models"
)

type membershipRow struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

// CreateGroup persists a new group and the creator's membership.
func (s *RestStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}

	var inserted []models.Group
	if err := s.client.From(tableGroups).Insert(ctx, []*models.Group{group}, &inserted); err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	if len(inserted) == 1 {
		*group = inserted[0]
	}

	if group.CreatedBy != "" {
		if err := s.AddGroupMembers(ctx, group.ID, []string{group.CreatedBy}); err != nil {
			return fmt.Errorf("failed to add creator to group: %w", err)
		}
	}
	return nil
}

// GetGroup retrieves a group by ID.
func (s *RestStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	var group models.Group
	err := s.client.From(tableGroups).
		Eq("id", groupID).
		Single().
		Get(ctx, &group)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return &group, nil
}

// ListGroupsForMember retrieves every group the user belongs to: first the
// user's membership rows, then the groups by ID.
func (s *RestStore) ListGroupsForMember(ctx context.Context, userID string) ([]models.Group, error) {
	var memberships []membershipRow
	err := s.client.From(tableGroupMembers).
		Select("group_id,user_id").
		Eq("user_id", userID).
		Get(ctx, &memberships)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	if len(memberships) == 0 {
		return nil, nil
	}

	groupIDs := make([]string, len(memberships))
	for i, m := range memberships {
		groupIDs[i] = m.GroupID
	}

	var groups []models.Group
	err = s.client.From(tableGroups).
		In("id", groupIDs).
		Order("created_at", false).
		Get(ctx, &groups)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// AddGroupMembers adds users to a group, merging on conflict so re-adding an
// existing member is a no-op.
func (s *RestStore) AddGroupMembers(ctx context.Context, groupID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]membershipRow, len(userIDs))
	for i, userID := range userIDs {
		rows[i] = membershipRow{GroupID: groupID, UserID: userID}
	}
	if err := s.client.From(tableGroupMembers).Upsert(ctx, rows, nil); err != nil {
		return fmt.Errorf("failed to add group members: %w", err)
	}
	return nil
}

// ListGroupMembers retrieves a group's memberships and fills in each
// member's profile fields with a second lookup.
func (s *RestStore) ListGroupMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	var members []models.GroupMember
	err := s.client.From(tableGroupMembers).
		Eq("group_id", groupID).
		Order("joined_at", false).
		Get(ctx, &members)
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	userIDs := make([]string, len(members))
	for i, m := range members {
		userIDs[i] = m.UserID
	}

	var profiles []models.User
	if err := s.client.From(tableProfiles).In("id", userIDs).Get(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("failed to load member profiles: %w", err)
	}

	byID := make(map[string]models.User, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	for i := range members {
		if p, ok := byID[members[i].UserID]; ok {
			members[i].Name = p.Name
			members[i].Email = p.Email
			members[i].UPIAddress = p.UPIAddress
		}
	}
	return members, nil
}
