package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coursedesk/ms-go-checkout/app/entity"
	"github.com/coursedesk/ms-go-checkout/app/factory"
	"github.com/coursedesk/ms-go-checkout/app/gateway"
	"github.com/coursedesk/ms-go-checkout/app/repository"
	"github.com/coursedesk/ms-go-checkout/config"
)

const defaultBatchSize = int32(100)

type courseRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Course, error)
}

type userRepository interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

type enrollmentLedger interface {
	CommitEnrollment(ctx context.Context, userID, courseID, intentID string, amountCents int64, currency string) (*entity.Payment, error)
	FindPayment(ctx context.Context, intentID string) (*entity.Payment, error)
	EnrollmentComplete(ctx context.Context, userID, courseID string) (bool, error)
	RepairEnrollment(ctx context.Context, userID, courseID string) error
	ListIncomplete(ctx context.Context, limit int32) ([]*entity.Payment, error)
}

type enrollmentEventRepository interface {
	Create(ctx context.Context, event *entity.EnrollmentEvent) error
}

type StartCheckoutResult struct {
	ClientSecret string
	Course       *entity.Course
}

type ConfirmCheckoutResult struct {
	Payment *entity.Payment
	// AlreadyProcessed marks a confirmation retry that found the
	// enrollment committed by an earlier attempt.
	AlreadyProcessed bool
}

type CheckoutService struct {
	courses     courseRepository
	users       userRepository
	ledger      enrollmentLedger
	events      enrollmentEventRepository
	gateway     gateway.PaymentGateway
	checkoutCfg config.CheckoutConfig
	logger      logrus.FieldLogger
}

func NewCheckoutService(
	courses courseRepository,
	users userRepository,
	ledger enrollmentLedger,
	events enrollmentEventRepository,
	paymentGateway gateway.PaymentGateway,
	checkoutCfg config.CheckoutConfig,
) *CheckoutService {
	if strings.TrimSpace(checkoutCfg.Currency) == "" {
		checkoutCfg.Currency = "usd"
	}

	return &CheckoutService{
		courses:     courses,
		users:       users,
		ledger:      ledger,
		events:      events,
		gateway:     paymentGateway,
		checkoutCfg: checkoutCfg,
		logger:      factory.NewModuleLogger("checkout-service"),
	}
}

// StartCheckout validates eligibility and asks the gateway for a fresh
// payment intent. Nothing is persisted: the eligibility check here is a
// point-in-time read, and the ledger's unique keys are the real guard
// when the confirmation lands.
func (s *CheckoutService) StartCheckout(ctx context.Context, userID, courseID string) (*StartCheckoutResult, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}

	if course.Price <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrice, course.Price)
	}

	if user.Owns(courseID) {
		return nil, ErrAlreadyOwned
	}

	intent, err := s.gateway.CreateIntent(ctx, &gateway.CreateIntentInput{
		AmountCents: amountMinorUnits(course.Price),
		Currency:    s.checkoutCfg.Currency,
		Description: "Payment for course: " + course.Title,
		Metadata: map[string]string{
			"userId":     user.ID,
			"courseId":   course.ID,
			"courseName": course.Title,
		},
	})
	if err != nil {
		return nil, err
	}

	return &StartCheckoutResult{
		ClientSecret: intent.ClientSecret,
		Course:       course,
	}, nil
}

// ConfirmCheckout reads the intent back from the gateway and, if it
// passed, commits the enrollment. Replays with the same intent id are
// answered as the success they already achieved.
func (s *CheckoutService) ConfirmCheckout(ctx context.Context, userID, courseID, intentID string) (*ConfirmCheckoutResult, error) {
	intent, err := s.gateway.RetrieveIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}

	if intent.Status != gateway.IntentStatusSucceeded {
		return nil, fmt.Errorf("%w: status=%s", ErrPaymentNotSucceeded, intent.Status)
	}

	if intent.Metadata["userId"] != userID || intent.Metadata["courseId"] != courseID {
		s.logger.WithFields(logrus.Fields{
			"intent_id":       intentID,
			"asserted_user":   userID,
			"asserted_course": courseID,
			"intent_user":     intent.Metadata["userId"],
			"intent_course":   intent.Metadata["courseId"],
		}).Warn("Payment intent metadata mismatch on confirmation")
		return nil, ErrIntentMismatch
	}

	existing, err := s.ledger.FindPayment(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.settleDuplicate(ctx, existing)
	}

	currency := intent.Currency
	if strings.TrimSpace(currency) == "" {
		currency = s.checkoutCfg.Currency
	}

	payment, err := s.ledger.CommitEnrollment(ctx, userID, courseID, intentID, intent.AmountCents, currency)
	if err != nil {
		if errors.Is(err, repository.ErrEnrollmentConflict) {
			// Lost the race against a concurrent confirmation of the
			// same intent; the winner committed the enrollment.
			committed, findErr := s.ledger.FindPayment(ctx, intentID)
			if findErr != nil {
				return nil, findErr
			}
			if committed != nil {
				return s.settleDuplicate(ctx, committed)
			}
		}
		return nil, err
	}

	s.recordEvent(ctx, payment.ID, "enrollment_committed", nil)

	return &ConfirmCheckoutResult{Payment: payment}, nil
}

// IntentStatus is a read-only passthrough to the gateway.
func (s *CheckoutService) IntentStatus(ctx context.Context, intentID string) (*gateway.Intent, error) {
	return s.gateway.RetrieveIntent(ctx, intentID)
}

// settleDuplicate handles a confirmation whose payment record already
// exists. If the rest of the enrollment also exists this is the benign
// retry; if not, an earlier attempt died between writes and the missing
// side is repaired here instead of waiting for the repair job.
func (s *CheckoutService) settleDuplicate(ctx context.Context, payment *entity.Payment) (*ConfirmCheckoutResult, error) {
	complete, err := s.ledger.EnrollmentComplete(ctx, payment.UserID, payment.CourseID)
	if err != nil {
		return nil, err
	}

	if !complete {
		s.logger.WithFields(logrus.Fields{
			"intent_id": payment.ProviderIntentID,
			"user_id":   payment.UserID,
			"course_id": payment.CourseID,
		}).Warn("Repairing partial enrollment on confirmation retry")

		if err := s.ledger.RepairEnrollment(ctx, payment.UserID, payment.CourseID); err != nil {
			return nil, err
		}
		s.recordEvent(ctx, payment.ID, "enrollment_repaired", nil)
	}

	s.recordEvent(ctx, payment.ID, "confirmation_replayed", nil)

	return &ConfirmCheckoutResult{Payment: payment, AlreadyProcessed: true}, nil
}

func (s *CheckoutService) recordEvent(ctx context.Context, paymentID uint64, eventType string, detail *string) {
	err := s.events.Create(ctx, &entity.EnrollmentEvent{
		PaymentID: paymentID,
		EventType: eventType,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.WithError(err).WithField("event_type", eventType).Warn("Failed to record enrollment event")
	}
}

func (s *CheckoutService) batchSize() int32 {
	if s.checkoutCfg.JobBatchSize > 0 {
		return s.checkoutCfg.JobBatchSize
	}
	return defaultBatchSize
}

// amountMinorUnits converts a course price to integer minor currency
// units, rounding half away from zero.
func amountMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
