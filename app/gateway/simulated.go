package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const simulatedIntentPrefix = "pi_test_"

// SimulatedGateway stands in for Stripe when no live credential is
// configured. Intents live in process memory; retrieval always reports
// a succeeded payment with the metadata supplied at creation, so the
// orchestrator's downstream logic never has to be mode-aware.
type SimulatedGateway struct {
	mu      sync.Mutex
	intents map[string]*Intent
}

func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{intents: map[string]*Intent{}}
}

func (g *SimulatedGateway) CreateIntent(_ context.Context, input *CreateIntentInput) (*Intent, error) {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	id := fmt.Sprintf("%s%d_%s", simulatedIntentPrefix, time.Now().UnixNano(), suffix)

	intent := &Intent{
		ID:           id,
		ClientSecret: id + "_secret_" + suffix,
		Status:       IntentStatusRequiresPaymentMethod,
		AmountCents:  input.AmountCents,
		Currency:     strings.ToLower(input.Currency),
		Metadata:     cloneMetadata(input.Metadata),
	}

	g.mu.Lock()
	g.intents[id] = intent
	g.mu.Unlock()

	return copyIntent(intent, intent.Status), nil
}

func (g *SimulatedGateway) RetrieveIntent(_ context.Context, intentID string) (*Intent, error) {
	g.mu.Lock()
	intent, ok := g.intents[strings.TrimSpace(intentID)]
	g.mu.Unlock()
	if !ok {
		return nil, ErrIntentNotFound
	}

	return copyIntent(intent, IntentStatusSucceeded), nil
}

func copyIntent(intent *Intent, status string) *Intent {
	return &Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       status,
		AmountCents:  intent.AmountCents,
		Currency:     intent.Currency,
		Metadata:     cloneMetadata(intent.Metadata),
	}
}
