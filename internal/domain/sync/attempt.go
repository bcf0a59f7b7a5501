package sync

import (
	"time"

	"github.com/google/uuid"

	"github.com/syncbridge/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// Sync Attempt Types
// ---------------------------------------------------------------------------

// Type identifies the kind of synchronization an attempt performs
type Type string

const (
	// TypeOrder syncs a commerce order into a CRM deal
	TypeOrder Type = "order"
	// TypeAbandonedCart syncs an abandoned cart into a CRM deal
	TypeAbandonedCart Type = "abandoned_cart"
	// TypeContactToCustomer syncs CRM contact updates back to a commerce customer
	TypeContactToCustomer Type = "contact_to_customer"
	// TypeDealToOrder syncs a CRM deal stage back to a commerce order status
	TypeDealToOrder Type = "deal_to_order"
	// TypeMarketingPreferences syncs opt-in flags from CRM to commerce
	TypeMarketingPreferences Type = "marketing_preferences"
)

// IsValid returns true if the sync type is known
func (t Type) IsValid() bool {
	switch t {
	case TypeOrder, TypeAbandonedCart, TypeContactToCustomer,
		TypeDealToOrder, TypeMarketingPreferences:
		return true
	default:
		return false
	}
}

// String returns the string representation of Type
func (t Type) String() string {
	return string(t)
}

// Direction indicates which system originated the data being synced
type Direction string

const (
	// DirectionSourceToTarget flows commerce data into the CRM
	DirectionSourceToTarget Direction = "source_to_target"
	// DirectionTargetToSource flows CRM data back into the commerce platform
	DirectionTargetToSource Direction = "target_to_source"
)

// IsValid returns true if the direction is valid
func (d Direction) IsValid() bool {
	return d == DirectionSourceToTarget || d == DirectionTargetToSource
}

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// Status is the lifecycle state of a sync attempt
type Status string

const (
	// StatusPending indicates the attempt has been created but not finished
	StatusPending Status = "pending"
	// StatusSuccess indicates the attempt completed successfully
	StatusSuccess Status = "success"
	// StatusFailed indicates the attempt finished with an error
	StatusFailed Status = "failed"
	// StatusRetrying indicates an operator re-armed the attempt and it is
	// waiting to be re-dispatched
	StatusRetrying Status = "retrying"
)

// IsValid returns true if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailed, StatusRetrying:
		return true
	default:
		return false
	}
}

// IsTerminal returns true once the attempt has reached a final state
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// Attempt Entity
// ---------------------------------------------------------------------------

// Attempt is one audited execution of a single cross-system sync operation.
// It is created pending and transitions exactly once to success or failed;
// the only way back is the explicit operator retry, which re-arms the same
// record rather than allocating a new one.
type Attempt struct {
	ID           uuid.UUID
	SyncType     Type
	Direction    Direction
	EntityType   string
	EntityID     string
	Status       Status
	Attempts     int
	ErrorMessage string
	RequestData  []byte
	ResponseData []byte
	StartedAt    time.Time
	CompletedAt  *time.Time
	DurationMs   *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewAttempt creates a pending sync attempt
func NewAttempt(syncType Type, direction Direction, entityType, entityID string) (*Attempt, error) {
	if !syncType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SYNC_TYPE", "Unknown sync type: "+string(syncType))
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_SYNC_DIRECTION", "Unknown sync direction: "+string(direction))
	}
	if entityType == "" || entityID == "" {
		return nil, shared.ErrInvalidInput
	}

	now := time.Now()
	return &Attempt{
		ID:         uuid.New(),
		SyncType:   syncType,
		Direction:  direction,
		EntityType: entityType,
		EntityID:   entityID,
		Status:     StatusPending,
		StartedAt:  now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// MarkSuccess transitions a pending attempt to success and stamps the
// completion fields
func (a *Attempt) MarkSuccess(responseData []byte) error {
	if a.Status.IsTerminal() {
		return shared.ErrInvalidState
	}
	now := time.Now()
	a.Status = StatusSuccess
	a.ResponseData = responseData
	a.complete(now)
	return nil
}

// MarkFailure transitions a pending attempt to failed, records the error
// message and increments the attempt counter
func (a *Attempt) MarkFailure(cause error) error {
	if a.Status.IsTerminal() {
		return shared.ErrInvalidState
	}
	now := time.Now()
	a.Status = StatusFailed
	if cause != nil {
		a.ErrorMessage = cause.Error()
	}
	a.Attempts++
	a.complete(now)
	return nil
}

// Rearm moves a failed attempt into retrying with a fresh start time.
// The identifier is kept so operators see one record per logical sync;
// the next MarkSuccess/MarkFailure completes this same record.
func (a *Attempt) Rearm() error {
	if a.Status != StatusFailed {
		return shared.NewDomainError("NOT_RETRYABLE", "Only failed sync attempts can be retried")
	}
	now := time.Now()
	a.Status = StatusRetrying
	a.StartedAt = now
	a.CompletedAt = nil
	a.DurationMs = nil
	a.UpdatedAt = now
	return nil
}

func (a *Attempt) complete(at time.Time) {
	a.CompletedAt = &at
	duration := at.Sub(a.StartedAt).Milliseconds()
	a.DurationMs = &duration
	a.UpdatedAt = at
}
