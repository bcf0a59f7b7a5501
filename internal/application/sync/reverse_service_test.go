package sync

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/syncbridge/backend/internal/domain/commerce"
	"github.com/syncbridge/backend/internal/domain/crm"
	"github.com/syncbridge/backend/internal/domain/sync"
)

func newReverseFixture() (*ReverseService, *MockCommercePlatform, *MockCRMPlatform, *MockLogRepository) {
	commercePlatform := new(MockCommercePlatform)
	crmPlatform := new(MockCRMPlatform)
	logRepo := new(MockLogRepository)
	audit := NewAuditService(logRepo, zap.NewNop())
	stageMap := NewStageMappingService(new(MockConfigRepository), zap.NewNop())
	service := NewReverseService(commercePlatform, crmPlatform, stageMap, audit, zap.NewNop())
	return service, commercePlatform, crmPlatform, logRepo
}

func TestReverseService_SyncContactToCustomer(t *testing.T) {
	contact := &crm.ContactRecord{
		ID: "101",
		Properties: map[string]string{
			"email":     "jane@example.com",
			"firstname": "Jane",
			"phone":     "555-0101",
		},
	}

	t.Run("patches the matching customer", func(t *testing.T) {
		service, commercePlatform, crmPlatform, logRepo := newReverseFixture()
		expectAuditOpen(logRepo)

		crmPlatform.On("GetContact", mock.Anything, "101").Return(contact, nil)
		commercePlatform.On("SearchCustomersByEmail", mock.Anything, "jane@example.com").
			Return([]commerce.Customer{{ID: 42, Email: "jane@example.com"}}, nil)
		commercePlatform.On("UpdateCustomer", mock.Anything, int64(42), mock.MatchedBy(func(patch commerce.CustomerPatch) bool {
			return patch.FirstName != nil && *patch.FirstName == "Jane" && patch.LastName == nil
		})).Return(&commerce.Customer{ID: 42}, nil)

		err := service.SyncContactToCustomer(context.Background(), "101")

		require.NoError(t, err)
		commercePlatform.AssertExpectations(t)
	})

	t.Run("no matching customer is a successful no-op", func(t *testing.T) {
		service, commercePlatform, crmPlatform, logRepo := newReverseFixture()
		expectAuditOpen(logRepo)

		crmPlatform.On("GetContact", mock.Anything, "101").Return(contact, nil)
		commercePlatform.On("SearchCustomersByEmail", mock.Anything, "jane@example.com").
			Return([]commerce.Customer{}, nil)

		err := service.SyncContactToCustomer(context.Background(), "101")

		require.NoError(t, err)
		commercePlatform.AssertNotCalled(t, "UpdateCustomer")
	})

	t.Run("contact without email is a validation failure", func(t *testing.T) {
		service, commercePlatform, crmPlatform, logRepo := newReverseFixture()
		expectAuditOpen(logRepo)

		crmPlatform.On("GetContact", mock.Anything, "101").
			Return(&crm.ContactRecord{ID: "101"}, nil)

		err := service.SyncContactToCustomer(context.Background(), "101")

		assert.True(t, sync.IsValidationError(err))
		commercePlatform.AssertNotCalled(t, "SearchCustomersByEmail")
	})

	t.Run("propagates contact fetch failure", func(t *testing.T) {
		service, _, crmPlatform, logRepo := newReverseFixture()
		expectAuditOpen(logRepo)

		crmPlatform.On("GetContact", mock.Anything, "404").Return(nil, crm.ErrContactNotFound)

		err := service.SyncContactToCustomer(context.Background(), "404")

		assert.ErrorIs(t, err, crm.ErrContactNotFound)
	})
}

func TestReverseService_SyncDealToOrderStatus(t *testing.T) {
	t.Run("maps closed-won to shipped", func(t *testing.T) {
		service, commercePlatform, crmPlatform, logRepo := newReverseFixture()
		expectAuditOpen(logRepo)

		deal := &crm.DealRecord{ID: "303", Properties: map[string]string{
			"dealstage": "closedwon",
			"order_id":  "12345",
		}}
		crmPlatform.On("GetDeal", mock.Anything, "303").Return(deal, nil)
		commercePlatform.On("GetOrder", mock.Anything, int64(12345)).Return(&commerce.Order{ID: 12345}, nil)
		commercePlatform.On("UpdateOrderStatus", mock.Anything, int64(12345), "Shipped").Return(nil)

		err := service.SyncDealToOrderStatus(context.Background(), "303")

		require.NoError(t, err)
		commercePlatform.AssertExpectations(t)
	})

	t.Run("deal without order reference is a successful no-op", func(t *testing.T) {
		service, commercePlatform, crmPlatform, logRepo := newReverseFixture()
		expectAuditOpen(logRepo)

		deal := &crm.DealRecord{ID: "303", Properties: map[string]string{"dealstage": "closedwon"}}
		crmPlatform.On("GetDeal", mock.Anything, "303").Return(deal, nil)

		err := service.SyncDealToOrderStatus(context.Background(), "303")

		require.NoError(t, err)
		commercePlatform.AssertNotCalled(t, "UpdateOrderStatus")
	})

	t.Run("unmapped stage is a successful no-op", func(t *testing.T) {
		service, commercePlatform, crmPlatform, logRepo := newReverseFixture()
		expectAuditOpen(logRepo)

		deal := &crm.DealRecord{ID: "303", Properties: map[string]string{
			"dealstage": "appointmentscheduled",
			"order_id":  "12345",
		}}
		crmPlatform.On("GetDeal", mock.Anything, "303").Return(deal, nil)

		err := service.SyncDealToOrderStatus(context.Background(), "303")

		require.NoError(t, err)
		commercePlatform.AssertNotCalled(t, "GetOrder")
	})

	t.Run("order modified after the deal keeps its status", func(t *testing.T) {
		service, commercePlatform, crmPlatform, logRepo := newReverseFixture()
		expectAuditOpen(logRepo)

		dealModified := time.Date(2023, 11, 1, 10, 0, 0, 0, time.UTC)
		orderModified := dealModified.Add(time.Hour)

		deal := &crm.DealRecord{ID: "303", Properties: map[string]string{
			"dealstage":           "closedwon",
			"order_id":            "12345",
			"hs_lastmodifieddate": strconv.FormatInt(dealModified.UnixMilli(), 10),
		}}
		crmPlatform.On("GetDeal", mock.Anything, "303").Return(deal, nil)
		commercePlatform.On("GetOrder", mock.Anything, int64(12345)).Return(&commerce.Order{
			ID:           12345,
			DateModified: orderModified.Format(time.RFC1123Z),
		}, nil)

		err := service.SyncDealToOrderStatus(context.Background(), "303")

		require.NoError(t, err)
		commercePlatform.AssertNotCalled(t, "UpdateOrderStatus")
	})

	t.Run("deal modified after the order wins", func(t *testing.T) {
		service, commercePlatform, crmPlatform, logRepo := newReverseFixture()
		expectAuditOpen(logRepo)

		orderModified := time.Date(2023, 11, 1, 10, 0, 0, 0, time.UTC)
		dealModified := orderModified.Add(time.Hour)

		deal := &crm.DealRecord{ID: "303", Properties: map[string]string{
			"dealstage":           "closedwon",
			"order_id":            "12345",
			"hs_lastmodifieddate": strconv.FormatInt(dealModified.UnixMilli(), 10),
		}}
		crmPlatform.On("GetDeal", mock.Anything, "303").Return(deal, nil)
		commercePlatform.On("GetOrder", mock.Anything, int64(12345)).Return(&commerce.Order{
			ID:           12345,
			DateModified: orderModified.Format(time.RFC1123Z),
		}, nil)
		commercePlatform.On("UpdateOrderStatus", mock.Anything, int64(12345), "Shipped").Return(nil)

		err := service.SyncDealToOrderStatus(context.Background(), "303")

		require.NoError(t, err)
		commercePlatform.AssertExpectations(t)
	})

	t.Run("malformed order reference is a validation failure", func(t *testing.T) {
		service, commercePlatform, crmPlatform, logRepo := newReverseFixture()
		expectAuditOpen(logRepo)

		deal := &crm.DealRecord{ID: "303", Properties: map[string]string{
			"dealstage": "closedwon",
			"order_id":  "not-a-number",
		}}
		crmPlatform.On("GetDeal", mock.Anything, "303").Return(deal, nil)

		err := service.SyncDealToOrderStatus(context.Background(), "303")

		assert.True(t, sync.IsValidationError(err))
		commercePlatform.AssertNotCalled(t, "UpdateOrderStatus")
	})
}

func TestReverseService_SyncMarketingPreferences(t *testing.T) {
	t.Run("pushes consent flags onto the customer", func(t *testing.T) {
		service, commercePlatform, crmPlatform, logRepo := newReverseFixture()
		expectAuditOpen(logRepo)

		contact := &crm.ContactRecord{ID: "101", Properties: map[string]string{
			"email":                    "jane@example.com",
			"accepts_marketing_emails": "true",
			"accepts_sms_marketing":    "false",
		}}
		crmPlatform.On("GetContact", mock.Anything, "101").Return(contact, nil)
		commercePlatform.On("SearchCustomersByEmail", mock.Anything, "jane@example.com").
			Return([]commerce.Customer{{ID: 42}}, nil)
		commercePlatform.On("UpdateCustomer", mock.Anything, int64(42), mock.MatchedBy(func(patch commerce.CustomerPatch) bool {
			return patch.AcceptsMarketing != nil && *patch.AcceptsMarketing &&
				patch.AcceptsSMS != nil && !*patch.AcceptsSMS
		})).Return(&commerce.Customer{ID: 42}, nil)

		err := service.SyncMarketingPreferences(context.Background(), "101")

		require.NoError(t, err)
		commercePlatform.AssertExpectations(t)
	})

	t.Run("no matching customer is a successful no-op", func(t *testing.T) {
		service, commercePlatform, crmPlatform, logRepo := newReverseFixture()
		expectAuditOpen(logRepo)

		contact := &crm.ContactRecord{ID: "101", Properties: map[string]string{"email": "jane@example.com"}}
		crmPlatform.On("GetContact", mock.Anything, "101").Return(contact, nil)
		commercePlatform.On("SearchCustomersByEmail", mock.Anything, "jane@example.com").
			Return([]commerce.Customer{}, nil)

		err := service.SyncMarketingPreferences(context.Background(), "101")

		require.NoError(t, err)
		commercePlatform.AssertNotCalled(t, "UpdateCustomer")
	})
}
