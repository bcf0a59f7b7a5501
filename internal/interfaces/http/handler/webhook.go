package handler

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appsync "github.com/syncbridge/backend/internal/application/sync"
	"github.com/syncbridge/backend/internal/interfaces/http/dto"
)

// SignatureHeader carries the HMAC-SHA256 hex signature of the raw
// webhook payload
const SignatureHeader = "X-Webhook-Signature"

// SignatureVerifier checks webhook payload signatures
type SignatureVerifier interface {
	VerifyWebhookSignature(payload []byte, signature string) bool
}

// WebhookHandler receives platform webhooks and hands them to the
// dispatcher. Webhooks are acknowledged as soon as the event is accepted;
// the sync itself runs in the background.
type WebhookHandler struct {
	BaseHandler
	dispatcher *appsync.Dispatcher
	verifier   SignatureVerifier
	logger     *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(dispatcher *appsync.Dispatcher, verifier SignatureVerifier, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		dispatcher: dispatcher,
		verifier:   verifier,
		logger:     logger,
	}
}

// RegisterRoutes registers webhook routes
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	webhooks := rg.Group("/webhooks")
	{
		webhooks.POST("/commerce", h.HandleCommerceWebhook)
		webhooks.POST("/crm", h.HandleCRMWebhook)
	}
}

// HandleCommerceWebhook receives commerce platform event notifications
func (h *WebhookHandler) HandleCommerceWebhook(c *gin.Context) {
	payload, ok := h.readAndVerify(c)
	if !ok {
		return
	}

	var event appsync.SourceEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.BadRequest(c, "Malformed webhook payload")
		return
	}

	if err := h.dispatcher.HandleSourceEvent(event); err != nil {
		h.logger.Warn("rejected commerce webhook",
			zap.String("scope", event.Scope),
			zap.Error(err))
		h.BadRequest(c, "Unsupported event: "+event.Scope)
		return
	}

	h.Success(c, gin.H{"received": true})
}

// HandleCRMWebhook receives CRM event notifications. The CRM sends
// batches, so the body is an array of events.
func (h *WebhookHandler) HandleCRMWebhook(c *gin.Context) {
	payload, ok := h.readAndVerify(c)
	if !ok {
		return
	}

	var events []appsync.TargetEvent
	if err := json.Unmarshal(payload, &events); err != nil {
		h.BadRequest(c, "Malformed webhook payload")
		return
	}

	h.dispatcher.HandleTargetEvents(events)
	h.Success(c, gin.H{"received": len(events)})
}

// readAndVerify reads the raw body and checks its signature. The raw
// bytes are kept for verification; signature checks over re-marshaled
// JSON would not survive key reordering.
func (h *WebhookHandler) readAndVerify(c *gin.Context) ([]byte, bool) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return nil, false
	}

	signature := c.GetHeader(SignatureHeader)
	if !h.verifier.VerifyWebhookSignature(payload, signature) {
		h.logger.Warn("webhook signature verification failed",
			zap.String("path", c.Request.URL.Path),
			zap.Int("payload_bytes", len(payload)))
		h.Unauthorized(c, dto.ErrCodeInvalidSignature, "Invalid webhook signature")
		return nil, false
	}

	return payload, true
}
