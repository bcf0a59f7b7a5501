package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/syncbridge/backend/internal/domain/commerce"
	"github.com/syncbridge/backend/internal/domain/crm"
	"github.com/syncbridge/backend/internal/domain/mapping"
	"github.com/syncbridge/backend/internal/domain/sync"
)

// CRM contact properties carrying marketing consent flags
const (
	marketingEmailProperty = "accepts_marketing_emails"
	marketingSMSProperty   = "accepts_sms_marketing"
)

// ReverseService syncs CRM changes back into the commerce platform:
// contact edits update customers, deal stage moves update order statuses,
// and consent flags update marketing preferences.
type ReverseService struct {
	commercePlatform commerce.Platform
	crmPlatform      crm.Platform
	stageMap         *StageMappingService
	audit            *AuditService
	logger           *zap.Logger
}

// NewReverseService creates a new ReverseService
func NewReverseService(
	commercePlatform commerce.Platform,
	crmPlatform crm.Platform,
	stageMap *StageMappingService,
	audit *AuditService,
	logger *zap.Logger,
) *ReverseService {
	return &ReverseService{
		commercePlatform: commercePlatform,
		crmPlatform:      crmPlatform,
		stageMap:         stageMap,
		audit:            audit,
		logger:           logger,
	}
}

// SyncContactToCustomer pushes a CRM contact's identity fields onto the
// matching commerce customer. A contact with no matching customer is a
// successful no-op; the customer may simply never have ordered.
func (s *ReverseService) SyncContactToCustomer(ctx context.Context, contactID string) error {
	requestData, _ := json.Marshal(map[string]string{"contact_id": contactID})
	attempt := s.audit.CreateLog(ctx, sync.TypeContactToCustomer, sync.DirectionTargetToSource, "contact", contactID, requestData)

	err := s.syncContactToCustomer(ctx, contactID, attempt)
	if err != nil {
		s.audit.LogFailure(ctx, attempt, err)
		s.logger.Error("contact sync failed",
			zap.String("contact_id", contactID),
			zap.Error(err))
		return err
	}
	return nil
}

// RetryContactToCustomer re-runs a contact sync against a re-armed
// attempt without opening a new audit record
func (s *ReverseService) RetryContactToCustomer(ctx context.Context, contactID string, attempt *sync.Attempt) error {
	err := s.syncContactToCustomer(ctx, contactID, attempt)
	if err != nil {
		s.audit.LogFailure(ctx, attempt, err)
		s.logger.Error("contact sync retry failed",
			zap.String("contact_id", contactID),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *ReverseService) syncContactToCustomer(ctx context.Context, contactID string, attempt *sync.Attempt) error {
	contact, err := s.crmPlatform.GetContact(ctx, contactID)
	if err != nil {
		return fmt.Errorf("fetch contact: %w", err)
	}

	email := contact.Email()
	if email == "" {
		return sync.NewValidationError(fmt.Sprintf("contact %s has no email to match on", contactID))
	}

	customers, err := s.commercePlatform.SearchCustomersByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("search customers: %w", err)
	}
	if len(customers) == 0 {
		s.logger.Info("no matching customer for contact, skipping",
			zap.String("contact_id", contactID),
			zap.String("email", email))
		s.audit.LogSuccess(ctx, attempt, []byte(`{"result":"no_matching_customer"}`))
		return nil
	}

	patch := mapping.ContactToCustomer(contact)
	customer, err := s.commercePlatform.UpdateCustomer(ctx, customers[0].ID, patch)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}

	responseData, _ := json.Marshal(map[string]int64{"customer_id": customer.ID})
	s.audit.LogSuccess(ctx, attempt, responseData)

	s.logger.Info("contact synced to customer",
		zap.String("contact_id", contactID),
		zap.Int64("customer_id", customer.ID))
	return nil
}

// SyncDealToOrderStatus maps a deal's pipeline stage back to an order
// status. Deals without an order reference or with a stage outside the
// mapping are successful no-ops. When the order was modified after the
// deal, last-write-wins keeps the order untouched.
func (s *ReverseService) SyncDealToOrderStatus(ctx context.Context, dealID string) error {
	requestData, _ := json.Marshal(map[string]string{"deal_id": dealID})
	attempt := s.audit.CreateLog(ctx, sync.TypeDealToOrder, sync.DirectionTargetToSource, "deal", dealID, requestData)

	err := s.syncDealToOrderStatus(ctx, dealID, attempt)
	if err != nil {
		s.audit.LogFailure(ctx, attempt, err)
		s.logger.Error("deal sync failed",
			zap.String("deal_id", dealID),
			zap.Error(err))
		return err
	}
	return nil
}

// RetryDealToOrder re-runs a deal-to-order sync against a re-armed
// attempt without opening a new audit record
func (s *ReverseService) RetryDealToOrder(ctx context.Context, dealID string, attempt *sync.Attempt) error {
	err := s.syncDealToOrderStatus(ctx, dealID, attempt)
	if err != nil {
		s.audit.LogFailure(ctx, attempt, err)
		s.logger.Error("deal sync retry failed",
			zap.String("deal_id", dealID),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *ReverseService) syncDealToOrderStatus(ctx context.Context, dealID string, attempt *sync.Attempt) error {
	deal, err := s.crmPlatform.GetDeal(ctx, dealID)
	if err != nil {
		return fmt.Errorf("fetch deal: %w", err)
	}

	orderRef := deal.OrderID()
	if orderRef == "" {
		s.logger.Info("deal carries no order reference, skipping",
			zap.String("deal_id", dealID))
		s.audit.LogSuccess(ctx, attempt, []byte(`{"result":"no_order_reference"}`))
		return nil
	}

	status, mapped := s.stageMap.StatusForStage(deal.Stage())
	if !mapped {
		s.logger.Info("deal stage outside order lifecycle, skipping",
			zap.String("deal_id", dealID),
			zap.String("stage", deal.Stage()))
		s.audit.LogSuccess(ctx, attempt, []byte(`{"result":"stage_not_mapped"}`))
		return nil
	}

	orderID, err := strconv.ParseInt(orderRef, 10, 64)
	if err != nil {
		return sync.NewValidationError(fmt.Sprintf("deal %s has malformed order reference %q", dealID, orderRef))
	}

	order, err := s.commercePlatform.GetOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("fetch order: %w", err)
	}

	if orderModified, dealModified := order.ModifiedAt(), deal.LastModifiedAt(); orderModified != nil && dealModified != nil {
		resolution := sync.ResolveConflict("order", orderRef,
			sync.ConflictSide{ModifiedAt: *orderModified},
			sync.ConflictSide{ModifiedAt: *dealModified})
		if resolution.Winner == sync.WinnerSource {
			s.logger.Info("order modified after deal, keeping order status",
				zap.String("deal_id", dealID),
				zap.Int64("order_id", orderID))
			s.audit.LogSuccess(ctx, attempt, []byte(`{"result":"order_newer"}`))
			return nil
		}
	}

	if err := s.commercePlatform.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	responseData, _ := json.Marshal(map[string]string{"order_status": status})
	s.audit.LogSuccess(ctx, attempt, responseData)

	s.logger.Info("deal stage synced to order status",
		zap.String("deal_id", dealID),
		zap.Int64("order_id", orderID),
		zap.String("status", status))
	return nil
}

// SyncMarketingPreferences pushes a contact's consent flags onto the
// matching commerce customer
func (s *ReverseService) SyncMarketingPreferences(ctx context.Context, contactID string) error {
	requestData, _ := json.Marshal(map[string]string{"contact_id": contactID})
	attempt := s.audit.CreateLog(ctx, sync.TypeMarketingPreferences, sync.DirectionTargetToSource, "contact", contactID, requestData)

	err := s.syncMarketingPreferences(ctx, contactID, attempt)
	if err != nil {
		s.audit.LogFailure(ctx, attempt, err)
		s.logger.Error("marketing preference sync failed",
			zap.String("contact_id", contactID),
			zap.Error(err))
		return err
	}
	return nil
}

// RetryMarketingPreferences re-runs a consent sync against a re-armed
// attempt without opening a new audit record
func (s *ReverseService) RetryMarketingPreferences(ctx context.Context, contactID string, attempt *sync.Attempt) error {
	err := s.syncMarketingPreferences(ctx, contactID, attempt)
	if err != nil {
		s.audit.LogFailure(ctx, attempt, err)
		s.logger.Error("marketing preference sync retry failed",
			zap.String("contact_id", contactID),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *ReverseService) syncMarketingPreferences(ctx context.Context, contactID string, attempt *sync.Attempt) error {
	contact, err := s.crmPlatform.GetContact(ctx, contactID)
	if err != nil {
		return fmt.Errorf("fetch contact: %w", err)
	}

	email := contact.Email()
	if email == "" {
		return sync.NewValidationError(fmt.Sprintf("contact %s has no email to match on", contactID))
	}

	customers, err := s.commercePlatform.SearchCustomersByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("search customers: %w", err)
	}
	if len(customers) == 0 {
		s.logger.Info("no matching customer for contact, skipping",
			zap.String("contact_id", contactID),
			zap.String("email", email))
		s.audit.LogSuccess(ctx, attempt, []byte(`{"result":"no_matching_customer"}`))
		return nil
	}

	acceptsEmail := contact.BoolProperty(marketingEmailProperty)
	acceptsSMS := contact.BoolProperty(marketingSMSProperty)
	patch := commerce.CustomerPatch{
		AcceptsMarketing: &acceptsEmail,
		AcceptsSMS:       &acceptsSMS,
	}

	customer, err := s.commercePlatform.UpdateCustomer(ctx, customers[0].ID, patch)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}

	responseData, _ := json.Marshal(map[string]any{
		"customer_id":   customer.ID,
		"accepts_email": acceptsEmail,
		"accepts_sms":   acceptsSMS,
	})
	s.audit.LogSuccess(ctx, attempt, responseData)

	s.logger.Info("marketing preferences synced",
		zap.String("contact_id", contactID),
		zap.Int64("customer_id", customer.ID))
	return nil
}
