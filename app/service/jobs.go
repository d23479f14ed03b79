package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coursedesk/ms-go-checkout/app/entity"
)

// RunRepairBatch reconciles succeeded payments against subscription
// membership and progress existence, finishing any partial commit. A
// single bad row does not stop the batch; the first error is reported
// after the sweep.
func (s *CheckoutService) RunRepairBatch(ctx context.Context) error {
	items, err := s.ledger.ListIncomplete(ctx, s.batchSize())
	if err != nil {
		return err
	}

	var firstErr error
	for _, payment := range items {
		if payment == nil {
			continue
		}

		if err := s.ledger.RepairEnrollment(ctx, payment.UserID, payment.CourseID); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"payment_id": payment.ID,
				"user_id":    payment.UserID,
				"course_id":  payment.CourseID,
			}).Error("Enrollment repair failed")
			firstErr = keepFirstErr(firstErr, err)
			continue
		}

		_ = s.events.Create(ctx, &entity.EnrollmentEvent{
			PaymentID: payment.ID,
			EventType: "enrollment_repaired",
			CreatedAt: time.Now().UTC(),
		})
	}

	return firstErr
}

func keepFirstErr(current error, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
