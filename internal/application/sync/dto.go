package sync

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/syncbridge/backend/internal/domain/sync"
)

// =============================================================================
// Response DTOs
// =============================================================================

// SyncLogResponse represents a sync attempt in API responses
type SyncLogResponse struct {
	ID           uuid.UUID  `json:"id"`
	SyncType     string     `json:"sync_type"`
	Direction    string     `json:"direction"`
	EntityType   string     `json:"entity_type"`
	EntityID     string     `json:"entity_id"`
	Status       string     `json:"status"`
	Attempts     int        `json:"attempts"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	DurationMs   *int64     `json:"duration_ms,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToSyncLogResponse converts a sync attempt to its response DTO
func ToSyncLogResponse(attempt *sync.Attempt) SyncLogResponse {
	return SyncLogResponse{
		ID:           attempt.ID,
		SyncType:     attempt.SyncType.String(),
		Direction:    attempt.Direction.String(),
		EntityType:   attempt.EntityType,
		EntityID:     attempt.EntityID,
		Status:       attempt.Status.String(),
		Attempts:     attempt.Attempts,
		ErrorMessage: attempt.ErrorMessage,
		StartedAt:    attempt.StartedAt,
		CompletedAt:  attempt.CompletedAt,
		DurationMs:   attempt.DurationMs,
		CreatedAt:    attempt.CreatedAt,
	}
}

// SyncStatsResponse summarizes attempt outcomes over a trailing window
type SyncStatsResponse struct {
	Since       time.Time `json:"since"`
	TotalSyncs  int64     `json:"total_syncs"`
	Successful  int64     `json:"successful"`
	Failed      int64     `json:"failed"`
	Pending     int64     `json:"pending"`
	SuccessRate float64   `json:"success_rate"`
}

// StageMappingResponse is the effective deal-stage to order-status mapping
type StageMappingResponse struct {
	Mapping map[string]string `json:"mapping"`
}

// =============================================================================
// Inbound Events
// =============================================================================

// SourceEventData is the entity reference inside a commerce webhook. The
// order webhooks carry a numeric id; cart webhooks carry a string id and
// sometimes a separate cartId field.
type SourceEventData struct {
	Type   string          `json:"type"`
	ID     json.RawMessage `json:"id"`
	CartID string          `json:"cartId"`
}

// SourceEvent is one commerce platform webhook notification
type SourceEvent struct {
	Scope string          `json:"scope"`
	Data  SourceEventData `json:"data"`
}

// OrderID parses the numeric entity id of an order event
func (e *SourceEvent) OrderID() (int64, error) {
	var id int64
	if err := json.Unmarshal(e.Data.ID, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// CartID resolves the cart identifier: the cartId field when present,
// otherwise the id field decoded as a string
func (e *SourceEvent) CartID() string {
	if e.Data.CartID != "" {
		return e.Data.CartID
	}
	var id string
	if err := json.Unmarshal(e.Data.ID, &id); err == nil {
		return id
	}
	return ""
}

// TargetEvent is one CRM webhook notification. The CRM batches these, so
// handlers receive a slice.
type TargetEvent struct {
	SubscriptionType string `json:"subscriptionType"`
	ObjectID         int64  `json:"objectId"`
	PropertyName     string `json:"propertyName"`
}
