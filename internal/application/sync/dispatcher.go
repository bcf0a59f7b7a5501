package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/syncbridge/backend/internal/domain/sync"
)

// Commerce webhook scopes the dispatcher routes
const (
	ScopeOrderCreated  = "store/order/created"
	ScopeCartAbandoned = "store/cart/abandoned"
)

// CRM webhook subscription types the dispatcher routes
const (
	SubscriptionContactChange = "contact.propertyChange"
	SubscriptionDealChange    = "deal.propertyChange"
)

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithInFlightGuard enables at-most-one-in-flight enforcement per sync
// identity with the given ttl
func WithInFlightGuard(guard sync.InFlightGuard, ttl time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.guard = guard
		d.guardTTL = ttl
	}
}

// WithJobTimeout bounds the wall-clock time of one background sync
func WithJobTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.jobTimeout = timeout
	}
}

// Dispatcher routes inbound webhook events to the sync services. Events
// are acknowledged immediately and processed in the background so webhook
// senders never see sync latency.
type Dispatcher struct {
	forward *ForwardService
	reverse *ReverseService
	audit   *AuditService
	logger  *zap.Logger

	guard      sync.InFlightGuard
	guardTTL   time.Duration
	jobTimeout time.Duration
	wg         gosync.WaitGroup
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(
	forward *ForwardService,
	reverse *ReverseService,
	audit *AuditService,
	logger *zap.Logger,
	opts ...DispatcherOption,
) *Dispatcher {
	d := &Dispatcher{
		forward:    forward,
		reverse:    reverse,
		audit:      audit,
		logger:     logger,
		jobTimeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// HandleSourceEvent routes one commerce webhook notification. The event
// is validated synchronously; the sync itself runs in the background.
func (d *Dispatcher) HandleSourceEvent(event SourceEvent) error {
	switch event.Scope {
	case ScopeOrderCreated:
		orderID, err := event.OrderID()
		if err != nil {
			return fmt.Errorf("%w: malformed order id", sync.ErrUnknownEventKind)
		}
		d.spawn(string(sync.TypeOrder), fmt.Sprintf("%d", orderID), func(ctx context.Context) error {
			return d.forward.SyncOrder(ctx, orderID)
		})
		return nil

	case ScopeCartAbandoned:
		cartID := event.CartID()
		if cartID == "" {
			return fmt.Errorf("%w: missing cart id", sync.ErrUnknownEventKind)
		}
		d.spawn(string(sync.TypeAbandonedCart), cartID, func(ctx context.Context) error {
			return d.forward.SyncAbandonedCart(ctx, cartID)
		})
		return nil

	default:
		return fmt.Errorf("%w: %s", sync.ErrUnknownEventKind, event.Scope)
	}
}

// HandleTargetEvents routes a batch of CRM webhook notifications. Unknown
// subscription types are skipped with a warning rather than failing the
// whole batch.
func (d *Dispatcher) HandleTargetEvents(events []TargetEvent) {
	for _, event := range events {
		objectID := fmt.Sprintf("%d", event.ObjectID)

		switch event.SubscriptionType {
		case SubscriptionContactChange:
			if event.PropertyName == marketingEmailProperty || event.PropertyName == marketingSMSProperty {
				d.spawn(string(sync.TypeMarketingPreferences), objectID, func(ctx context.Context) error {
					return d.reverse.SyncMarketingPreferences(ctx, objectID)
				})
				continue
			}
			d.spawn(string(sync.TypeContactToCustomer), objectID, func(ctx context.Context) error {
				return d.reverse.SyncContactToCustomer(ctx, objectID)
			})

		case SubscriptionDealChange:
			d.spawn(string(sync.TypeDealToOrder), objectID, func(ctx context.Context) error {
				return d.reverse.SyncDealToOrderStatus(ctx, objectID)
			})

		default:
			d.logger.Warn("unknown crm subscription type, skipping",
				zap.String("subscription_type", event.SubscriptionType),
				zap.Int64("object_id", event.ObjectID))
		}
	}
}

// ManualRetry re-arms a failed attempt and re-dispatches it. Only failed
// attempts are retryable; the re-armed attempt keeps its identifier and
// is the record the retry completes, so no new audit row appears.
func (d *Dispatcher) ManualRetry(ctx context.Context, id uuid.UUID) (*SyncLogResponse, error) {
	attempt, err := d.audit.Rearm(ctx, id)
	if err != nil {
		return nil, err
	}

	// Snapshot the response before dispatch; the background retry
	// completes (and mutates) the same attempt record.
	response := ToSyncLogResponse(attempt)

	entityID := attempt.EntityID
	switch attempt.SyncType {
	case sync.TypeOrder:
		orderID, err := parseOrderID(entityID)
		if err != nil {
			return nil, err
		}
		d.spawn(string(attempt.SyncType), entityID, func(ctx context.Context) error {
			return d.forward.RetryOrder(ctx, orderID, attempt)
		})
	case sync.TypeAbandonedCart:
		d.spawn(string(attempt.SyncType), entityID, func(ctx context.Context) error {
			return d.forward.RetryAbandonedCart(ctx, entityID, attempt)
		})
	case sync.TypeContactToCustomer:
		d.spawn(string(attempt.SyncType), entityID, func(ctx context.Context) error {
			return d.reverse.RetryContactToCustomer(ctx, entityID, attempt)
		})
	case sync.TypeDealToOrder:
		d.spawn(string(attempt.SyncType), entityID, func(ctx context.Context) error {
			return d.reverse.RetryDealToOrder(ctx, entityID, attempt)
		})
	case sync.TypeMarketingPreferences:
		d.spawn(string(attempt.SyncType), entityID, func(ctx context.Context) error {
			return d.reverse.RetryMarketingPreferences(ctx, entityID, attempt)
		})
	default:
		return nil, sync.ErrUnknownEventKind
	}

	return &response, nil
}

// Shutdown waits for in-flight background syncs to finish, up to the
// context deadline
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// spawn runs one sync in the background, detached from the webhook
// request context. The retry already happens inside the platform
// adapters; a failure here is terminal until an operator retries it.
func (d *Dispatcher) spawn(syncType, entityID string, run func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.jobTimeout)
		defer cancel()

		if d.guard != nil {
			key := syncType + ":" + entityID
			acquired, err := d.guard.Acquire(ctx, key, d.guardTTL)
			if err != nil {
				d.logger.Warn("in-flight guard unavailable, proceeding without it",
					zap.String("key", key),
					zap.Error(err))
			} else if !acquired {
				d.logger.Info("sync already in flight, skipping",
					zap.String("key", key))
				return
			} else {
				defer func() {
					if err := d.guard.Release(context.Background(), key); err != nil {
						d.logger.Warn("failed to release in-flight guard",
							zap.String("key", key),
							zap.Error(err))
					}
				}()
			}
		}

		// Errors are already audited and logged by the services.
		_ = run(ctx)
	}()
}

func parseOrderID(raw string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(raw, "%d", &id); err != nil {
		return 0, fmt.Errorf("malformed order entity id %q: %w", raw, err)
	}
	return id, nil
}
