package repository

import (
	"context"

	"github.com/coursedesk/ms-go-checkout/app/entity"
)

type EnrollmentEventRepository struct {
	db DBTX
}

func NewEnrollmentEventRepository(db DBTX) *EnrollmentEventRepository {
	return &EnrollmentEventRepository{db: db}
}

func (r *EnrollmentEventRepository) Create(ctx context.Context, event *entity.EnrollmentEvent) error {
	query := `
		INSERT INTO enrollment_events (payment_id, event_type, detail, created_at)
		VALUES (?, ?, ?, ?)
	`

	var detail interface{}
	if event.Detail != nil {
		detail = *event.Detail
	}

	result, err := r.db.ExecContext(ctx, query,
		event.PaymentID,
		event.EventType,
		detail,
		event.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	event.ID = uint64(id)
	return nil
}
