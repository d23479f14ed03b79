package repository

import (
	"context"
	"database/sql"

	"github.com/coursedesk/ms-go-checkout/app/entity"
)

type ProgressRepository struct {
	db DBTX
}

func NewProgressRepository(db DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// CreateIfAbsent inserts the progress record unless one already exists
// for the (user, course) pair. The unique key absorbs the duplicate.
func (r *ProgressRepository) CreateIfAbsent(ctx context.Context, progress *entity.Progress) error {
	lecturesJSON, err := serializeLectures(progress.CompletedLectures)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO progress (user_id, course_id, completed_lectures_json, created_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		progress.UserID,
		progress.CourseID,
		lecturesJSON,
		progress.CreatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return nil
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	progress.ID = uint64(id)
	return nil
}

func (r *ProgressRepository) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	query := `
		SELECT 1
		FROM progress
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
