package types

import (
	"errors"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
)

type StartCheckoutRequest struct {
	CourseId string `json:"courseId"`
}

func NewStartCheckoutRequestFromContext(ctx echo.Context) (*StartCheckoutRequest, error) {
	return &StartCheckoutRequest{
		CourseId: strings.TrimSpace(ctx.Param("courseId")),
	}, nil
}

func (r *StartCheckoutRequest) Validate() error {
	if strings.TrimSpace(r.CourseId) == "" {
		return errors.New("course id is required")
	}
	return nil
}

type ConfirmCheckoutRequest struct {
	PaymentIntentId string `json:"paymentIntentId"`
	CourseId        string `json:"courseId"`
}

func NewConfirmCheckoutRequestFromContext(ctx echo.Context) (*ConfirmCheckoutRequest, error) {
	var body ConfirmCheckoutRequest
	if err := ctx.Bind(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	body.PaymentIntentId = strings.TrimSpace(body.PaymentIntentId)
	body.CourseId = strings.TrimSpace(body.CourseId)

	return &body, nil
}

func (r *ConfirmCheckoutRequest) Validate() error {
	if r.PaymentIntentId == "" {
		return errors.New("payment intent id is required")
	}
	if r.CourseId == "" {
		return errors.New("course id is required")
	}
	return nil
}

type IntentStatusRequest struct {
	PaymentIntentId string
}

func NewIntentStatusRequestFromContext(ctx echo.Context) (*IntentStatusRequest, error) {
	return &IntentStatusRequest{
		PaymentIntentId: strings.TrimSpace(ctx.Param("paymentIntentId")),
	}, nil
}

func (r *IntentStatusRequest) Validate() error {
	if r.PaymentIntentId == "" {
		return errors.New("payment intent id is required")
	}
	return nil
}

type CourseSummary struct {
	Id          string  `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
	Description string  `json:"description,omitempty"`
}

type StartCheckoutResponse struct {
	Success      bool           `json:"success"`
	ClientSecret string         `json:"clientSecret"`
	Course       *CourseSummary `json:"course"`
}

type ConfirmCheckoutResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	PaymentIntentId string `json:"paymentIntentId"`
}

type IntentStatusResponse struct {
	Success  bool    `json:"success"`
	Status   string  `json:"status"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type ErrorResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	ReasonCode string `json:"reasonCode,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
