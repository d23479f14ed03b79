package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/coursedesk/ms-go-checkout/app/entity"
)

var ErrPaymentAlreadyExists = errors.New("payment already exists")

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts the payment record. The unique key on
// provider_intent_id is the authoritative idempotency guard for
// confirmation retries.
func (r *PaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (
			provider_intent_id, amount_cents, currency, status,
			user_id, course_id, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		payment.ProviderIntentID,
		payment.AmountCents,
		payment.Currency,
		payment.Status,
		payment.UserID,
		payment.CourseID,
		payment.CreatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrPaymentAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	payment.ID = uint64(id)
	return nil
}

func (r *PaymentRepository) FindByIntentID(ctx context.Context, intentID string) (*entity.Payment, error) {
	query := `
		SELECT id, provider_intent_id, amount_cents, currency, status,
			user_id, course_id, created_at
		FROM payments
		WHERE provider_intent_id = ?
		LIMIT 1
	`

	payment := &entity.Payment{}
	err := r.db.QueryRowContext(ctx, query, intentID).Scan(
		&payment.ID,
		&payment.ProviderIntentID,
		&payment.AmountCents,
		&payment.Currency,
		&payment.Status,
		&payment.UserID,
		&payment.CourseID,
		&payment.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return payment, nil
}

// ListMissingEnrollment returns succeeded payments whose subscription
// membership or progress record is absent. These are partial commits
// the repair job must finish.
func (r *PaymentRepository) ListMissingEnrollment(ctx context.Context, limit int32) ([]*entity.Payment, error) {
	query := `
		SELECT p.id, p.provider_intent_id, p.amount_cents, p.currency, p.status,
			p.user_id, p.course_id, p.created_at
		FROM payments p
		LEFT JOIN user_subscriptions s
			ON s.user_id = p.user_id AND s.course_id = p.course_id
		LEFT JOIN progress g
			ON g.user_id = p.user_id AND g.course_id = p.course_id
		WHERE p.status = 'succeeded'
		  AND (s.user_id IS NULL OR g.id IS NULL)
		ORDER BY p.id ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*entity.Payment, 0)
	for rows.Next() {
		payment := &entity.Payment{}
		err := rows.Scan(
			&payment.ID,
			&payment.ProviderIntentID,
			&payment.AmountCents,
			&payment.Currency,
			&payment.Status,
			&payment.UserID,
			&payment.CourseID,
			&payment.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}
