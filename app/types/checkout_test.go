package types

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestStartCheckoutRequestValidate(t *testing.T) {
	req := &StartCheckoutRequest{}
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for missing course id")
	}

	req.CourseId = "c-1"
	if err := req.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestNewConfirmCheckoutRequestFromContextTrimsFields(t *testing.T) {
	e := echo.New()
	body := `{"paymentIntentId":"  pi_123  ","courseId":" c-1 "}`
	httpReq := httptest.NewRequest("POST", "/checkout/confirm", strings.NewReader(body))
	httpReq.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(httpReq, rec)

	req, err := NewConfirmCheckoutRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if req.PaymentIntentId != "pi_123" || req.CourseId != "c-1" {
		t.Fatalf("fields not trimmed: %+v", req)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestConfirmCheckoutRequestValidateRequiresBothIDs(t *testing.T) {
	req := &ConfirmCheckoutRequest{PaymentIntentId: "pi_123"}
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for missing course id")
	}

	req = &ConfirmCheckoutRequest{CourseId: "c-1"}
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for missing payment intent id")
	}
}

func TestIntentStatusRequestValidate(t *testing.T) {
	req := &IntentStatusRequest{}
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for missing payment intent id")
	}
}
