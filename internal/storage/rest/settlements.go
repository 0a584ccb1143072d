package rest

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Shritej1000/Spiltzee/internal/models"
)

// CreateSettlement records a settlement payment.
func (s *RestStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}

	var inserted []models.Settlement
	if err := s.client.From(tableSettlements).Insert(ctx, []*models.Settlement{settlement}, &inserted); err != nil {
		return fmt.Errorf("failed to create settlement: %w", err)
	}
	if len(inserted) == 1 {
		*settlement = inserted[0]
	}
	return nil
}

// ListSettlements retrieves a group's recorded settlements, newest first.
func (s *RestStore) ListSettlements(ctx context.Context, groupID string) ([]models.Settlement, error) {
	var settlements []models.Settlement
	err := s.client.From(tableSettlements).
		Eq("group_id", groupID).
		Order("created_at", true).
		Get(ctx, &settlements)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	return settlements, nil
}
