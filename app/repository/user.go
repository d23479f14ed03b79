package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/coursedesk/ms-go-checkout/app/entity"
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	query := `
		SELECT id, name, email, role, created_at
		FROM users
		WHERE id = ?
	`

	user := &entity.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	subscription, err := r.subscriptionSet(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Subscription = subscription

	return user, nil
}

func (r *UserRepository) Owns(ctx context.Context, userID, courseID string) (bool, error) {
	query := `
		SELECT 1
		FROM user_subscriptions
		WHERE user_id = ? AND course_id = ?
		LIMIT 1
	`

	var one int
	err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AppendSubscription adds the course to the user's subscription set.
// The composite primary key makes the insert a no-op when the course is
// already present, so concurrent appends for the same pair are safe.
func (r *UserRepository) AppendSubscription(ctx context.Context, userID, courseID string) error {
	query := `
		INSERT INTO user_subscriptions (user_id, course_id, created_at)
		VALUES (?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, userID, courseID, time.Now().UTC())
	if err != nil && !isDuplicateEntryError(err) {
		return err
	}
	return nil
}

func (r *UserRepository) subscriptionSet(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT course_id
		FROM user_subscriptions
		WHERE user_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courseIDs := make([]string, 0)
	for rows.Next() {
		var courseID string
		if err := rows.Scan(&courseID); err != nil {
			return nil, err
		}
		courseIDs = append(courseIDs, courseID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return courseIDs, nil
}
