package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSimulatedGatewayCreateIntent(t *testing.T) {
	g := NewSimulatedGateway()

	intent, err := g.CreateIntent(context.Background(), &CreateIntentInput{
		AmountCents: 4999,
		Currency:    "USD",
		Metadata:    map[string]string{"userId": "u-1", "courseId": "c-1", "courseName": "Go Basics"},
	})
	if err != nil {
		t.Fatalf("create intent failed: %v", err)
	}
	if !strings.HasPrefix(intent.ID, "pi_test_") {
		t.Fatalf("expected pi_test_ prefixed id, got %s", intent.ID)
	}
	if intent.ClientSecret == "" {
		t.Fatal("expected client secret")
	}
	if intent.Status != IntentStatusRequiresPaymentMethod {
		t.Fatalf("unexpected initial status: %s", intent.Status)
	}
	if intent.Currency != "usd" {
		t.Fatalf("expected lowercased currency, got %s", intent.Currency)
	}
}

func TestSimulatedGatewayIntentIDsAreUnique(t *testing.T) {
	g := NewSimulatedGateway()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		intent, err := g.CreateIntent(context.Background(), &CreateIntentInput{AmountCents: 100, Currency: "usd"})
		if err != nil {
			t.Fatalf("create intent failed: %v", err)
		}
		if seen[intent.ID] {
			t.Fatalf("duplicate intent id: %s", intent.ID)
		}
		seen[intent.ID] = true
	}
}

func TestSimulatedGatewayRetrieveReportsSucceededAndEchoesMetadata(t *testing.T) {
	g := NewSimulatedGateway()
	created, err := g.CreateIntent(context.Background(), &CreateIntentInput{
		AmountCents: 4999,
		Currency:    "usd",
		Metadata:    map[string]string{"userId": "u-1", "courseId": "c-1"},
	})
	if err != nil {
		t.Fatalf("create intent failed: %v", err)
	}

	retrieved, err := g.RetrieveIntent(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("retrieve intent failed: %v", err)
	}
	if retrieved.Status != IntentStatusSucceeded {
		t.Fatalf("expected succeeded, got %s", retrieved.Status)
	}
	if retrieved.AmountCents != 4999 {
		t.Fatalf("unexpected amount: %d", retrieved.AmountCents)
	}
	if retrieved.Metadata["userId"] != "u-1" || retrieved.Metadata["courseId"] != "c-1" {
		t.Fatalf("metadata not echoed back: %+v", retrieved.Metadata)
	}
}

func TestSimulatedGatewayRetrieveUnknownIntent(t *testing.T) {
	g := NewSimulatedGateway()
	_, err := g.RetrieveIntent(context.Background(), "pi_test_unknown")
	if !errors.Is(err, ErrIntentNotFound) {
		t.Fatalf("expected ErrIntentNotFound, got %v", err)
	}
}
