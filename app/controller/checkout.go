package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/coursedesk/ms-go-checkout/app/auth"
	"github.com/coursedesk/ms-go-checkout/app/factory"
	"github.com/coursedesk/ms-go-checkout/app/gateway"
	"github.com/coursedesk/ms-go-checkout/app/mapper"
	"github.com/coursedesk/ms-go-checkout/app/service"
	"github.com/coursedesk/ms-go-checkout/app/types"
)

type CheckoutController struct {
	checkoutService *service.CheckoutService
	logger          logrus.FieldLogger
}

func NewCheckoutController(checkoutService *service.CheckoutService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
		logger:          factory.NewModuleLogger("checkout-controller"),
	}
}

func (c *CheckoutController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *CheckoutController) StartCheckout(ctx echo.Context) error {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return c.writeError(ctx, http.StatusUnauthorized, "authentication required", "unauthorized")
	}

	req, err := types.NewStartCheckoutRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request", "")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error(), "")
	}

	result, err := c.checkoutService.StartCheckout(ctx.Request().Context(), userID, req.CourseId)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return c.writeError(ctx, http.StatusNotFound, "user not found", service.ReasonNotFound)
		case errors.Is(err, service.ErrCourseNotFound):
			return c.writeError(ctx, http.StatusNotFound, "course not found", service.ReasonNotFound)
		case errors.Is(err, service.ErrInvalidPrice):
			return c.writeError(ctx, http.StatusBadRequest, "invalid course price", service.ReasonInvalidPrice)
		case errors.Is(err, service.ErrAlreadyOwned):
			return c.writeError(ctx, http.StatusBadRequest, "you already have this course", service.ReasonAlreadyOwned)
		case errors.Is(err, gateway.ErrProviderUnavailable):
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Payment provider unavailable")
			return c.writeError(ctx, http.StatusBadGateway, "payment provider is unavailable, try again", service.ReasonProviderUnavailable)
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Start checkout failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error", "")
		}
	}

	return ctx.JSON(http.StatusOK, &types.StartCheckoutResponse{
		Success:      true,
		ClientSecret: result.ClientSecret,
		Course:       mapper.CourseToSummary(result.Course),
	})
}

func (c *CheckoutController) ConfirmCheckout(ctx echo.Context) error {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return c.writeError(ctx, http.StatusUnauthorized, "authentication required", "unauthorized")
	}

	req, err := types.NewConfirmCheckoutRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body", "")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error(), "")
	}

	result, err := c.checkoutService.ConfirmCheckout(ctx.Request().Context(), userID, req.CourseId, req.PaymentIntentId)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrIntentNotFound):
			return c.writeError(ctx, http.StatusNotFound, "payment intent not found", service.ReasonNotFound)
		case errors.Is(err, service.ErrPaymentNotSucceeded):
			return c.writeError(ctx, http.StatusBadRequest, "payment was not successful", service.ReasonPaymentNotSucceeded)
		case errors.Is(err, service.ErrIntentMismatch):
			return c.writeError(ctx, http.StatusBadRequest, "invalid payment intent", service.ReasonIntentMismatch)
		case errors.Is(err, gateway.ErrProviderUnavailable):
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Payment provider unavailable")
			return c.writeError(ctx, http.StatusBadGateway, "payment provider is unavailable, try again", service.ReasonProviderUnavailable)
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Confirm checkout failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error", "")
		}
	}

	message := "payment confirmed and course purchased successfully"
	if result.AlreadyProcessed {
		message = "payment already processed, course access is active"
	}

	return ctx.JSON(http.StatusOK, &types.ConfirmCheckoutResponse{
		Success:         true,
		Message:         message,
		PaymentIntentId: req.PaymentIntentId,
	})
}

func (c *CheckoutController) IntentStatus(ctx echo.Context) error {
	if _, ok := auth.UserID(ctx); !ok {
		return c.writeError(ctx, http.StatusUnauthorized, "authentication required", "unauthorized")
	}

	req, err := types.NewIntentStatusRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request", "")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error(), "")
	}

	intent, err := c.checkoutService.IntentStatus(ctx.Request().Context(), req.PaymentIntentId)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrIntentNotFound):
			return c.writeError(ctx, http.StatusNotFound, "payment intent not found", service.ReasonNotFound)
		case errors.Is(err, gateway.ErrProviderUnavailable):
			return c.writeError(ctx, http.StatusBadGateway, "payment provider is unavailable, try again", service.ReasonProviderUnavailable)
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Intent status lookup failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error", "")
		}
	}

	return ctx.JSON(http.StatusOK, &types.IntentStatusResponse{
		Success:  true,
		Status:   intent.Status,
		Amount:   float64(intent.AmountCents) / 100,
		Currency: intent.Currency,
	})
}

func (c *CheckoutController) writeError(ctx echo.Context, statusCode int, message, reasonCode string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{
		Success:    false,
		Message:    message,
		ReasonCode: reasonCode,
	})
}
