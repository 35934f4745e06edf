package appointment

import (
	"context"

	"smiledesk/models"
)

// Repository persists confirmed appointments in the vector store and reads
// them back by user identifier.
type Repository interface {
	Save(ctx context.Context, appt *models.Appointment) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Appointment, error)
}
