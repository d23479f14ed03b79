package gateway

import (
	"context"
	"errors"
)

// Payment intent statuses as reported by the provider. The orchestrator
// only ever branches on IntentStatusSucceeded.
const (
	IntentStatusRequiresPaymentMethod = "requires_payment_method"
	IntentStatusRequiresConfirmation  = "requires_confirmation"
	IntentStatusSucceeded             = "succeeded"
	IntentStatusFailed                = "failed"
	IntentStatusCanceled              = "canceled"
)

var (
	ErrProviderUnavailable = errors.New("payment provider unavailable")
	ErrIntentNotFound      = errors.New("payment intent not found")
)

type CreateIntentInput struct {
	AmountCents int64
	Currency    string
	Description string
	Metadata    map[string]string
}

// Intent is the provider-side charge record. Metadata is set once at
// creation and never mutated; it is the only binding between the intent
// and the domain entities it authorizes.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	AmountCents  int64
	Currency     string
	Metadata     map[string]string
}

// PaymentGateway has no confirmation method: the client completes the
// payment against the provider directly, and the service only reads the
// result back via RetrieveIntent.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, input *CreateIntentInput) (*Intent, error)
	RetrieveIntent(ctx context.Context, intentID string) (*Intent, error)
}

func cloneMetadata(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
