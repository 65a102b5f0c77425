package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"filedrive/internal/domain"
	"filedrive/internal/service"
	"filedrive/internal/webhook"
)

const (
	maxWebhookBody  = 1 << 20
	webhookErrorMsg = "Webhook Error"
)

// WebhookHandler recibe los eventos firmados del proveedor de identidad.
type WebhookHandler struct {
	logger   *zap.Logger
	webhooks *service.WebhookService
}

func NewWebhookHandler(logger *zap.Logger, webhooks *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		logger:   logger,
		webhooks: webhooks,
	}
}

// Clerk maneja POST /clerk. Cualquier fallo responde 400 "Webhook Error";
// el detalle solo queda en los logs.
func (h *WebhookHandler) Clerk(c *gin.Context) {
	headers := webhook.HeadersFrom(c.Request.Header)

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.reject(c, "read body failed", err, headers)
		return
	}

	evt, err := h.webhooks.Fulfill(c.Request.Context(), payload, headers)
	if err != nil {
		h.reject(c, failureReason(err), err, headers)
		return
	}

	h.logger.Info("webhook processed",
		zap.String("svix_id", headers.ID),
		zap.String("type", evt.Type()),
	)
	c.Status(http.StatusOK)
}

func (h *WebhookHandler) reject(c *gin.Context, reason string, err error, headers webhook.Headers) {
	h.logger.Warn("Webhook Error",
		zap.String("reason", reason),
		zap.String("svix_id", headers.ID),
		zap.Error(err),
	)
	c.String(http.StatusBadRequest, webhookErrorMsg)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, webhook.ErrMissingHeaders):
		return "missing headers"
	case errors.Is(err, webhook.ErrInvalidSignature):
		return "verification failed"
	case errors.Is(err, webhook.ErrMalformedEvent):
		return "malformed event"
	case errors.Is(err, domain.ErrUserNotFound):
		return "user not found"
	default:
		return "handler failed"
	}
}
