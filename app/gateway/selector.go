package gateway

import (
	"strings"

	"github.com/coursedesk/ms-go-checkout/config"
)

// placeholderSecretKey is the value shipped in .env templates; treating
// it as unconfigured keeps a copy-pasted template from hitting the live
// Stripe API.
const placeholderSecretKey = "sk_test_your_stripe_secret_key_here"

// Select picks the gateway implementation once at startup. Callers hold
// a PaymentGateway and never learn which mode they got.
func Select(cfg config.StripeConfig) PaymentGateway {
	if !Configured(cfg) {
		return NewSimulatedGateway()
	}
	return NewStripeGateway(cfg)
}

func Configured(cfg config.StripeConfig) bool {
	key := strings.TrimSpace(cfg.SecretKey)
	return key != "" && key != placeholderSecretKey
}
