package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/coursedesk/ms-go-checkout/app/entity"
)

// ErrEnrollmentConflict reports that a payment record already exists
// for the intent. Callers treat it as a benign duplicate once the rest
// of the enrollment is verified, not as a failure.
var ErrEnrollmentConflict = errors.New("enrollment already committed for this intent")

// EnrollmentLedger owns the multi-record write that turns a confirmed
// payment into an enrollment: payment record, subscription membership,
// progress record. All three commit in one transaction, with the
// payment insert first so its unique intent key anchors idempotency.
type EnrollmentLedger struct {
	db *sql.DB
}

func NewEnrollmentLedger(db *sql.DB) *EnrollmentLedger {
	return &EnrollmentLedger{db: db}
}

func (l *EnrollmentLedger) CommitEnrollment(ctx context.Context, userID, courseID, intentID string, amountCents int64, currency string) (*entity.Payment, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	payment := &entity.Payment{
		ProviderIntentID: intentID,
		AmountCents:      amountCents,
		Currency:         currency,
		Status:           "succeeded",
		UserID:           userID,
		CourseID:         courseID,
		CreatedAt:        now,
	}

	if err := NewPaymentRepository(tx).Create(ctx, payment); err != nil {
		if errors.Is(err, ErrPaymentAlreadyExists) {
			return nil, ErrEnrollmentConflict
		}
		return nil, err
	}

	if err := NewUserRepository(tx).AppendSubscription(ctx, userID, courseID); err != nil {
		return nil, err
	}

	if err := NewProgressRepository(tx).CreateIfAbsent(ctx, &entity.Progress{
		UserID:            userID,
		CourseID:          courseID,
		CompletedLectures: []string{},
		CreatedAt:         now,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return payment, nil
}

func (l *EnrollmentLedger) FindPayment(ctx context.Context, intentID string) (*entity.Payment, error) {
	return NewPaymentRepository(l.db).FindByIntentID(ctx, intentID)
}

// EnrollmentComplete reports whether both the subscription membership
// and the progress record exist for the pair.
func (l *EnrollmentLedger) EnrollmentComplete(ctx context.Context, userID, courseID string) (bool, error) {
	owns, err := NewUserRepository(l.db).Owns(ctx, userID, courseID)
	if err != nil {
		return false, err
	}
	if !owns {
		return false, nil
	}

	return NewProgressRepository(l.db).Exists(ctx, userID, courseID)
}

// RepairEnrollment finishes a partial commit: both writes are guarded
// inserts, so repairing an already-complete enrollment is a no-op.
func (l *EnrollmentLedger) RepairEnrollment(ctx context.Context, userID, courseID string) error {
	if err := NewUserRepository(l.db).AppendSubscription(ctx, userID, courseID); err != nil {
		return err
	}

	return NewProgressRepository(l.db).CreateIfAbsent(ctx, &entity.Progress{
		UserID:            userID,
		CourseID:          courseID,
		CompletedLectures: []string{},
		CreatedAt:         time.Now().UTC(),
	})
}

func (l *EnrollmentLedger) ListIncomplete(ctx context.Context, limit int32) ([]*entity.Payment, error) {
	return NewPaymentRepository(l.db).ListMissingEnrollment(ctx, limit)
}
