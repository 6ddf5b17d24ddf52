// internal/handlers/webhook.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/samoku/samoku-backend/internal/config"
	"github.com/samoku/samoku-backend/internal/i18n"
	"github.com/samoku/samoku-backend/internal/services"
	"github.com/samoku/samoku-backend/internal/utils"
)

const signatureHeader = "X-Dropship-Signature"

// WebhookHandler ingests supplier events. The raw body is read before
// JSON decoding so the HMAC covers exactly the bytes on the wire.
type WebhookHandler struct {
	dropshipService *services.DropshipService
	config          *config.Config
}

type webhookEnvelope struct {
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
}

func NewWebhookHandler(dropshipService *services.DropshipService, cfg *config.Config) *WebhookHandler {
	return &WebhookHandler{
		dropshipService: dropshipService,
		config:          cfg,
	}
}

// POST /webhooks/dropship
func (h *WebhookHandler) HandleDropshipEvent(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		utils.BadRequestResponse(c, "failed to read body", nil)
		return
	}

	if secret := h.config.Dropship.WebhookSecret; secret != "" {
		signature := c.GetHeader(signatureHeader)
		if signature == "" || !utils.VerifySignature(secret, body, signature) {
			logrus.WithField("remote_addr", c.ClientIP()).Warn("Rejected dropship webhook with bad signature")
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyWebhookInvalidSignature))
			return
		}
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "payload"), err.Error())
		return
	}

	switch envelope.EventType {
	case "order_status_changed":
		var event services.OrderStatusChangedEvent
		if err := json.Unmarshal(envelope.Data, &event); err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "payload"), err.Error())
			return
		}
		err = h.dropshipService.HandleOrderStatusChanged(&event)

	case "stock_changed":
		var event services.StockChangedEvent
		if err := json.Unmarshal(envelope.Data, &event); err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "payload"), err.Error())
			return
		}
		err = h.dropshipService.HandleStockChanged(&event)

	case "product_updated":
		var event services.ProductUpdatedEvent
		if err := json.Unmarshal(envelope.Data, &event); err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "payload"), err.Error())
			return
		}
		err = h.dropshipService.HandleProductUpdated(&event)

	default:
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "event_type"), nil)
		return
	}

	if err != nil {
		// The failure is already in the sync log. A 400 tells the provider
		// not to retry a malformed event forever; anything else is our
		// fault and worth a retry, without echoing internals back out.
		if errors.Is(err, services.ErrInvalidEvent) || errors.Is(err, services.ErrInvalidTransition) || errors.Is(err, gorm.ErrRecordNotFound) {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		logrus.WithError(err).WithField("event_type", envelope.EventType).Error("Dropship webhook processing failed")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyWebhookProcessed)})
}
