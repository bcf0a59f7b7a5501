package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/syncbridge/backend/internal/domain/commerce"
	"github.com/syncbridge/backend/internal/domain/crm"
	"github.com/syncbridge/backend/internal/domain/mapping"
	"github.com/syncbridge/backend/internal/domain/sync"
)

const (
	// defaultOrderDealStage is the CRM stage for deals created from completed orders
	defaultOrderDealStage = "closedwon"
	// defaultCartDealStage is the CRM stage for deals created from abandoned carts
	defaultCartDealStage = "appointmentscheduled"
)

// ForwardOption configures a ForwardService
type ForwardOption func(*ForwardService)

// WithDealStages overrides the CRM stages assigned to order and
// abandoned-cart deals. Empty values keep the defaults.
func WithDealStages(orderStage, cartStage string) ForwardOption {
	return func(s *ForwardService) {
		if orderStage != "" {
			s.orderDealStage = orderStage
		}
		if cartStage != "" {
			s.cartDealStage = cartStage
		}
	}
}

// ForwardService syncs commerce entities into the CRM: orders and
// abandoned carts become deals attached to an upserted contact.
type ForwardService struct {
	commercePlatform commerce.Platform
	crmPlatform      crm.Platform
	audit            *AuditService
	logger           *zap.Logger

	orderDealStage string
	cartDealStage  string
}

// NewForwardService creates a new ForwardService
func NewForwardService(
	commercePlatform commerce.Platform,
	crmPlatform crm.Platform,
	audit *AuditService,
	logger *zap.Logger,
	opts ...ForwardOption,
) *ForwardService {
	s := &ForwardService{
		commercePlatform: commercePlatform,
		crmPlatform:      crmPlatform,
		audit:            audit,
		logger:           logger,
		orderDealStage:   defaultOrderDealStage,
		cartDealStage:    defaultCartDealStage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncOrder relays a commerce order into the CRM as a contact plus a
// closed-won deal
func (s *ForwardService) SyncOrder(ctx context.Context, orderID int64) error {
	entityID := strconv.FormatInt(orderID, 10)
	requestData, _ := json.Marshal(map[string]int64{"order_id": orderID})
	attempt := s.audit.CreateLog(ctx, sync.TypeOrder, sync.DirectionSourceToTarget, "order", entityID, requestData)

	err := s.syncOrder(ctx, orderID, attempt)
	if err != nil {
		s.audit.LogFailure(ctx, attempt, err)
		s.logger.Error("order sync failed",
			zap.Int64("order_id", orderID),
			zap.Error(err))
		return err
	}
	return nil
}

// RetryOrder re-runs an order sync against a re-armed attempt. No new
// audit record is opened; success or failure completes the given one.
func (s *ForwardService) RetryOrder(ctx context.Context, orderID int64, attempt *sync.Attempt) error {
	err := s.syncOrder(ctx, orderID, attempt)
	if err != nil {
		s.audit.LogFailure(ctx, attempt, err)
		s.logger.Error("order sync retry failed",
			zap.Int64("order_id", orderID),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *ForwardService) syncOrder(ctx context.Context, orderID int64, attempt *sync.Attempt) error {
	order, err := s.commercePlatform.GetOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("fetch order: %w", err)
	}

	products, err := s.commercePlatform.GetOrderProducts(ctx, orderID)
	if err != nil {
		return fmt.Errorf("fetch order products: %w", err)
	}

	// A missing customer record is tolerated; the billing address still
	// carries enough to build a contact.
	var customer *commerce.Customer
	if order.CustomerID > 0 {
		customer, err = s.commercePlatform.GetCustomer(ctx, order.CustomerID)
		if err != nil {
			s.logger.Warn("customer fetch failed, falling back to billing address",
				zap.Int64("order_id", orderID),
				zap.Int64("customer_id", order.CustomerID),
				zap.Error(err))
			customer = nil
		}
	}

	contact := mapping.CustomerToContact(customer, &order.BillingAddress)
	if contact.Email == "" {
		return sync.NewValidationError(fmt.Sprintf("order %d has no usable email", orderID))
	}

	contactRecord, err := s.upsertContact(ctx, contact)
	if err != nil {
		return fmt.Errorf("upsert contact: %w", err)
	}

	deal := mapping.OrderToDeal(order, products, s.orderDealStage)
	dealRecord, err := s.crmPlatform.CreateDeal(ctx, deal)
	if err != nil {
		return fmt.Errorf("create deal: %w", err)
	}

	if err := s.crmPlatform.AssociateDealWithContact(ctx, dealRecord.ID, contactRecord.ID); err != nil {
		return fmt.Errorf("associate deal: %w", err)
	}

	responseData, _ := json.Marshal(map[string]string{
		"deal_id":    dealRecord.ID,
		"contact_id": contactRecord.ID,
	})
	s.audit.LogSuccess(ctx, attempt, responseData)

	s.logger.Info("order synced",
		zap.Int64("order_id", orderID),
		zap.String("deal_id", dealRecord.ID),
		zap.String("contact_id", contactRecord.ID))
	return nil
}

// SyncAbandonedCart relays an abandoned cart into the CRM as a recovery
// deal attached to an upserted contact
func (s *ForwardService) SyncAbandonedCart(ctx context.Context, cartID string) error {
	requestData, _ := json.Marshal(map[string]string{"cart_id": cartID})
	attempt := s.audit.CreateLog(ctx, sync.TypeAbandonedCart, sync.DirectionSourceToTarget, "cart", cartID, requestData)

	err := s.syncAbandonedCart(ctx, cartID, attempt)
	if err != nil {
		s.audit.LogFailure(ctx, attempt, err)
		s.logger.Error("abandoned cart sync failed",
			zap.String("cart_id", cartID),
			zap.Error(err))
		return err
	}
	return nil
}

// RetryAbandonedCart re-runs an abandoned-cart sync against a re-armed
// attempt without opening a new audit record
func (s *ForwardService) RetryAbandonedCart(ctx context.Context, cartID string, attempt *sync.Attempt) error {
	err := s.syncAbandonedCart(ctx, cartID, attempt)
	if err != nil {
		s.audit.LogFailure(ctx, attempt, err)
		s.logger.Error("abandoned cart sync retry failed",
			zap.String("cart_id", cartID),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *ForwardService) syncAbandonedCart(ctx context.Context, cartID string, attempt *sync.Attempt) error {
	cart, err := s.commercePlatform.GetCart(ctx, cartID)
	if err != nil {
		return fmt.Errorf("fetch cart: %w", err)
	}

	// Customer resolution order: the embedded customer, then a lookup by
	// customer id, then just the billing address and the cart email.
	customer := cart.Customer
	if customer == nil && cart.CustomerID > 0 {
		customer, err = s.commercePlatform.GetCustomer(ctx, cart.CustomerID)
		if err != nil {
			s.logger.Warn("customer fetch failed, falling back to cart fields",
				zap.String("cart_id", cartID),
				zap.Int64("customer_id", cart.CustomerID),
				zap.Error(err))
			customer = nil
		}
	}

	contact := mapping.CustomerToContact(customer, cart.BillingAddress)
	if contact.Email == "" {
		contact.Email = cart.Email
	}
	if contact.Email == "" {
		return sync.NewValidationError(fmt.Sprintf("cart %s has no usable email", cartID))
	}

	contactRecord, err := s.upsertContact(ctx, contact)
	if err != nil {
		return fmt.Errorf("upsert contact: %w", err)
	}

	deal := mapping.CartToDeal(cart, s.cartDealStage)
	dealRecord, err := s.crmPlatform.CreateDeal(ctx, deal)
	if err != nil {
		return fmt.Errorf("create deal: %w", err)
	}

	if err := s.crmPlatform.AssociateDealWithContact(ctx, dealRecord.ID, contactRecord.ID); err != nil {
		return fmt.Errorf("associate deal: %w", err)
	}

	responseData, _ := json.Marshal(map[string]string{
		"deal_id":    dealRecord.ID,
		"contact_id": contactRecord.ID,
	})
	s.audit.LogSuccess(ctx, attempt, responseData)

	s.logger.Info("abandoned cart synced",
		zap.String("cart_id", cartID),
		zap.String("deal_id", dealRecord.ID),
		zap.String("contact_id", contactRecord.ID))
	return nil
}

// upsertContact finds a contact by email and updates it, or creates one
// when no contact exists yet
func (s *ForwardService) upsertContact(ctx context.Context, contact crm.Contact) (*crm.ContactRecord, error) {
	existing, err := s.crmPlatform.FindContactByEmail(ctx, contact.Email)
	if err != nil {
		if errors.Is(err, crm.ErrContactNotFound) {
			return s.crmPlatform.CreateContact(ctx, contact)
		}
		return nil, err
	}
	return s.crmPlatform.UpdateContact(ctx, existing.ID, contact)
}
