package profile

import (
	"context"

	"smiledesk/models"
)

// Repository stores user profiles captured at booking confirmation.
type Repository interface {
	Upsert(ctx context.Context, p *models.UserProfile) error
	GetByID(ctx context.Context, userID string) (*models.UserProfile, error)
}
