package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/syncbridge/backend/internal/domain/commerce"
	"github.com/syncbridge/backend/internal/domain/crm"
	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
)

func (f *webFixture) request(method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	f.router.ServeHTTP(w, req)
	return w
}

func failedAttempt(syncType syncdomain.Type, entityType, entityID string) *syncdomain.Attempt {
	attempt, _ := syncdomain.NewAttempt(syncType, syncdomain.DirectionSourceToTarget, entityType, entityID)
	_ = attempt.MarkFailure(assert.AnError)
	return attempt
}

func TestSyncLogHandler_ListLogs(t *testing.T) {
	t.Run("returns matching logs", func(t *testing.T) {
		fixture := newWebFixture(&staticVerifier{accept: true})

		attempt := failedAttempt(syncdomain.TypeOrder, "order", "12345")
		fixture.logRepo.On("FindAll", mock.Anything, mock.MatchedBy(func(filter syncdomain.LogFilter) bool {
			return filter.Status != nil && *filter.Status == syncdomain.StatusFailed && filter.Limit == 10
		})).Return([]syncdomain.Attempt{*attempt}, nil)

		w := fixture.request(http.MethodGet, "/api/v1/sync/logs?status=failed&limit=10", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"entity_id":"12345"`)
		assert.Contains(t, w.Body.String(), `"status":"failed"`)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		fixture := newWebFixture(&staticVerifier{accept: true})

		w := fixture.request(http.MethodGet, "/api/v1/sync/logs?status=bogus", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		fixture.logRepo.AssertNotCalled(t, "FindAll")
	})

	t.Run("rejects an unknown sync type", func(t *testing.T) {
		fixture := newWebFixture(&staticVerifier{accept: true})

		w := fixture.request(http.MethodGet, "/api/v1/sync/logs?sync_type=bogus", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects an out of range limit", func(t *testing.T) {
		fixture := newWebFixture(&staticVerifier{accept: true})

		w := fixture.request(http.MethodGet, "/api/v1/sync/logs?limit=5000", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSyncLogHandler_GetLog(t *testing.T) {
	t.Run("returns the attempt", func(t *testing.T) {
		fixture := newWebFixture(&staticVerifier{accept: true})

		attempt := failedAttempt(syncdomain.TypeOrder, "order", "12345")
		fixture.logRepo.On("FindByID", mock.Anything, attempt.ID).Return(attempt, nil)

		w := fixture.request(http.MethodGet, "/api/v1/sync/logs/"+attempt.ID.String(), "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), attempt.ID.String())
	})

	t.Run("returns 404 for a missing attempt", func(t *testing.T) {
		fixture := newWebFixture(&staticVerifier{accept: true})

		id := uuid.New()
		fixture.logRepo.On("FindByID", mock.Anything, id).Return(nil, syncdomain.ErrAttemptNotFound)

		w := fixture.request(http.MethodGet, "/api/v1/sync/logs/"+id.String(), "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejects a malformed id", func(t *testing.T) {
		fixture := newWebFixture(&staticVerifier{accept: true})

		w := fixture.request(http.MethodGet, "/api/v1/sync/logs/not-a-uuid", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		fixture.logRepo.AssertNotCalled(t, "FindByID")
	})
}

func TestSyncLogHandler_RetryLog(t *testing.T) {
	t.Run("re-arms a failed attempt and responds 202", func(t *testing.T) {
		fixture := newWebFixture(&staticVerifier{accept: true})

		attempt := failedAttempt(syncdomain.TypeOrder, "order", "12345")
		fixture.logRepo.On("FindByID", mock.Anything, attempt.ID).Return(attempt, nil)
		fixture.logRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

		order := &commerce.Order{ID: 12345, BillingAddress: commerce.Address{Email: "jane@example.com"}}
		fixture.commercePlatform.On("GetOrder", mock.Anything, int64(12345)).Return(order, nil)
		fixture.commercePlatform.On("GetOrderProducts", mock.Anything, int64(12345)).Return([]commerce.OrderProduct{}, nil)
		fixture.crmPlatform.On("FindContactByEmail", mock.Anything, "jane@example.com").
			Return(&crm.ContactRecord{ID: "101"}, nil)
		fixture.crmPlatform.On("UpdateContact", mock.Anything, "101", mock.Anything).
			Return(&crm.ContactRecord{ID: "101"}, nil)
		fixture.crmPlatform.On("CreateDeal", mock.Anything, mock.Anything).Return(&crm.DealRecord{ID: "303"}, nil)
		fixture.crmPlatform.On("AssociateDealWithContact", mock.Anything, "303", "101").Return(nil)

		w := fixture.request(http.MethodPost, "/api/v1/sync/logs/"+attempt.ID.String()+"/retry", "")

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"retrying"`)

		fixture.drain(t)
		fixture.crmPlatform.AssertExpectations(t)

		// The retry finishes the re-armed record itself instead of
		// opening a second audit row.
		fixture.logRepo.AssertNotCalled(t, "Create")
		assert.Equal(t, syncdomain.StatusSuccess, attempt.Status)
	})

	t.Run("rejects retrying a successful attempt", func(t *testing.T) {
		fixture := newWebFixture(&staticVerifier{accept: true})

		attempt, _ := syncdomain.NewAttempt(syncdomain.TypeOrder, syncdomain.DirectionSourceToTarget, "order", "12345")
		_ = attempt.MarkSuccess(nil)
		fixture.logRepo.On("FindByID", mock.Anything, attempt.ID).Return(attempt, nil)

		w := fixture.request(http.MethodPost, "/api/v1/sync/logs/"+attempt.ID.String()+"/retry", "")

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		fixture.logRepo.AssertNotCalled(t, "Update")
	})
}

func TestSyncLogHandler_GetStats(t *testing.T) {
	t.Run("returns aggregates for the default window", func(t *testing.T) {
		fixture := newWebFixture(&staticVerifier{accept: true})

		fixture.logRepo.On("CountByStatusSince", mock.Anything, mock.MatchedBy(func(since time.Time) bool {
			return time.Since(since) > 23*time.Hour
		})).Return(syncdomain.StatusCounts{Total: 4, Successful: 3, Failed: 1}, nil)

		w := fixture.request(http.MethodGet, "/api/v1/sync/stats", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"success_rate":75`)
	})

	t.Run("rejects an unparseable window", func(t *testing.T) {
		fixture := newWebFixture(&staticVerifier{accept: true})

		w := fixture.request(http.MethodGet, "/api/v1/sync/stats?window=yesterday", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		fixture.logRepo.AssertNotCalled(t, "CountByStatusSince")
	})

	t.Run("rejects a non-positive window", func(t *testing.T) {
		fixture := newWebFixture(&staticVerifier{accept: true})

		w := fixture.request(http.MethodGet, "/api/v1/sync/stats?window=-1h", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStageMappingHandler(t *testing.T) {
	t.Run("GET returns the effective mapping", func(t *testing.T) {
		fixture := newWebFixture(&staticVerifier{accept: true})

		w := fixture.request(http.MethodGet, "/api/v1/sync/stage-mapping", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"closedwon"`)
	})

	t.Run("PUT persists and activates overrides", func(t *testing.T) {
		fixture := newWebFixture(&staticVerifier{accept: true})

		fixture.configRepo.On("Set", mock.Anything, syncdomain.StageMappingConfigKey, mock.Anything).Return(nil)

		w := fixture.request(http.MethodPut, "/api/v1/sync/stage-mapping",
			`{"mapping":{"closedwon":"Completed"}}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"closedwon":"Completed"`)
		fixture.configRepo.AssertExpectations(t)
	})

	t.Run("PUT rejects a body without mapping", func(t *testing.T) {
		fixture := newWebFixture(&staticVerifier{accept: true})

		w := fixture.request(http.MethodPut, "/api/v1/sync/stage-mapping", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		fixture.configRepo.AssertNotCalled(t, "Set")
	})

	t.Run("PUT rejects blank mapping entries", func(t *testing.T) {
		fixture := newWebFixture(&staticVerifier{accept: true})

		w := fixture.request(http.MethodPut, "/api/v1/sync/stage-mapping",
			`{"mapping":{"closedwon":""}}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("DELETE restores the defaults", func(t *testing.T) {
		fixture := newWebFixture(&staticVerifier{accept: true})

		fixture.configRepo.On("Set", mock.Anything, syncdomain.StageMappingConfigKey, mock.Anything).Return(nil)
		fixture.configRepo.On("Delete", mock.Anything, syncdomain.StageMappingConfigKey).Return(nil)

		put := fixture.request(http.MethodPut, "/api/v1/sync/stage-mapping",
			`{"mapping":{"closedwon":"Completed"}}`)
		assert.Equal(t, http.StatusOK, put.Code)

		w := fixture.request(http.MethodDelete, "/api/v1/sync/stage-mapping", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "Completed")
	})
}
