package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/coursedesk/ms-go-checkout/config"
)

const stripeAPIBase = "https://api.stripe.com"

type StripeGateway struct {
	cfg     config.StripeConfig
	client  *http.Client
	baseURL string
}

func NewStripeGateway(cfg config.StripeConfig) *StripeGateway {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &StripeGateway{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		baseURL: stripeAPIBase,
	}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, input *CreateIntentInput) (*Intent, error) {
	if strings.TrimSpace(g.cfg.SecretKey) == "" {
		return nil, errors.New("stripe secret key is not configured")
	}

	values := url.Values{}
	values.Set("amount", strconv.FormatInt(input.AmountCents, 10))
	values.Set("currency", strings.ToLower(input.Currency))
	if strings.TrimSpace(input.Description) != "" {
		values.Set("description", input.Description)
	}
	for k, v := range input.Metadata {
		values.Set("metadata["+k+"]", v)
	}

	body, err := g.postForm(ctx, "/v1/payment_intents", values)
	if err != nil {
		return nil, err
	}

	return parseIntent(body)
}

func (g *StripeGateway) RetrieveIntent(ctx context.Context, intentID string) (*Intent, error) {
	if strings.TrimSpace(intentID) == "" {
		return nil, ErrIntentNotFound
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/payment_intents/"+url.PathEscape(intentID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.SecretKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrIntentNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: stripe get payment intent failed: status=%d body=%s", ErrProviderUnavailable, resp.StatusCode, string(body))
	}

	return parseIntent(body)
}

func (g *StripeGateway) postForm(ctx context.Context, path string, values url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: stripe request failed: path=%s status=%d body=%s", ErrProviderUnavailable, path, resp.StatusCode, string(body))
	}

	return body, nil
}

func parseIntent(body []byte) (*Intent, error) {
	var payload struct {
		ID           string            `json:"id"`
		ClientSecret string            `json:"client_secret"`
		Status       string            `json:"status"`
		Amount       int64             `json:"amount"`
		Currency     string            `json:"currency"`
		Metadata     map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	metadata := payload.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}

	return &Intent{
		ID:           strings.TrimSpace(payload.ID),
		ClientSecret: payload.ClientSecret,
		Status:       payload.Status,
		AmountCents:  payload.Amount,
		Currency:     payload.Currency,
		Metadata:     metadata,
	}, nil
}
