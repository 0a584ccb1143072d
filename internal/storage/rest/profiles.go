package rest

import (
	"context"
	"fmt"

	"github.com/Shritej1000/Spiltzee/internal/models"
)

// UpsertProfile creates or updates the user's profile row.
func (s *RestStore) UpsertProfile(ctx context.Context, user *models.User) error {
	if err := s.client.From(tableProfiles).Upsert(ctx, []*models.User{user}, nil); err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// GetProfile retrieves one user's profile.
func (s *RestStore) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.client.From(tableProfiles).
		Eq("id", userID).
		Single().
		Get(ctx, &user)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &user, nil
}

// ListProfiles retrieves all profiles visible to the caller.
func (s *RestStore) ListProfiles(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.client.From(tableProfiles).Order("created_at", false).Get(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return users, nil
}
