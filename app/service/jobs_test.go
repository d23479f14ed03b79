package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coursedesk/ms-go-checkout/app/entity"
	"github.com/coursedesk/ms-go-checkout/app/gateway"
)

func seedPartialPayment(l *fakeLedger, intentID, userID, courseID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.payments[intentID] = &entity.Payment{
		ID:               l.nextID,
		ProviderIntentID: intentID,
		AmountCents:      4999,
		Currency:         "usd",
		Status:           "succeeded",
		UserID:           userID,
		CourseID:         courseID,
		CreatedAt:        time.Now().UTC(),
	}
	l.nextID++
}

func TestRunRepairBatchFinishesPartialCommits(t *testing.T) {
	f := newCheckoutFixture(gateway.NewSimulatedGateway())
	seedPartialPayment(f.ledger, "pi_test_orphan_1", "u-1", "c-1")
	seedPartialPayment(f.ledger, "pi_test_orphan_2", "u-2", "c-1")

	if err := f.svc.RunRepairBatch(context.Background()); err != nil {
		t.Fatalf("repair batch failed: %v", err)
	}

	for _, userID := range []string{"u-1", "u-2"} {
		if !f.ledger.subs[pairKey(userID, "c-1")] {
			t.Fatalf("expected subscription repaired for %s", userID)
		}
		if !f.ledger.progress[pairKey(userID, "c-1")] {
			t.Fatalf("expected progress repaired for %s", userID)
		}
	}

	repaired := 0
	for _, name := range f.events.types() {
		if name == "enrollment_repaired" {
			repaired++
		}
	}
	if repaired != 2 {
		t.Fatalf("expected 2 repair events, got %d", repaired)
	}
}

func TestRunRepairBatchSkipsCompleteEnrollments(t *testing.T) {
	f := newCheckoutFixture(gateway.NewSimulatedGateway())
	startAndConfirm(t, f, "u-1", "c-1")
	before := len(f.events.types())

	if err := f.svc.RunRepairBatch(context.Background()); err != nil {
		t.Fatalf("repair batch failed: %v", err)
	}

	if got := len(f.events.types()); got != before {
		t.Fatalf("complete enrollment must not be touched, got %d new events", got-before)
	}
}

func TestRunRepairBatchReportsFirstErrorAfterSweep(t *testing.T) {
	f := newCheckoutFixture(gateway.NewSimulatedGateway())
	seedPartialPayment(f.ledger, "pi_test_orphan_1", "u-1", "c-1")
	seedPartialPayment(f.ledger, "pi_test_orphan_2", "u-2", "c-1")

	wantErr := errors.New("replica lag")
	f.ledger.repairErr = wantErr

	err := f.svc.RunRepairBatch(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected first repair error, got %v", err)
	}
}

func TestKeepFirstErr(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")

	if got := keepFirstErr(nil, first); got != first {
		t.Fatalf("expected first, got %v", got)
	}
	if got := keepFirstErr(first, second); got != first {
		t.Fatalf("expected sticky first, got %v", got)
	}
	if got := keepFirstErr(nil, nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
