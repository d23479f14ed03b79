package repository

import (
	"context"
	"database/sql"

	"github.com/coursedesk/ms-go-checkout/app/entity"
)

type CourseRepository struct {
	db DBTX
}

func NewCourseRepository(db DBTX) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) FindByID(ctx context.Context, id string) (*entity.Course, error) {
	query := `
		SELECT id, title, description, image, price, creator, created_at
		FROM courses
		WHERE id = ?
	`

	course := &entity.Course{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.Image,
		&course.Price,
		&course.Creator,
		&course.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return course, nil
}
