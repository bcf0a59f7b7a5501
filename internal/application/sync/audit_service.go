package sync

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/syncbridge/backend/internal/domain/sync"
)

// AuditService records the lifecycle of sync attempts. Logging is
// fail-open: an unavailable audit store degrades observability but never
// blocks the sync itself.
type AuditService struct {
	logRepo sync.LogRepository
	logger  *zap.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(logRepo sync.LogRepository, logger *zap.Logger) *AuditService {
	return &AuditService{
		logRepo: logRepo,
		logger:  logger,
	}
}

// CreateLog opens a pending attempt record. A nil return means auditing
// is unavailable for this attempt; the caller proceeds without it.
func (s *AuditService) CreateLog(ctx context.Context, syncType sync.Type, direction sync.Direction, entityType, entityID string, requestData []byte) *sync.Attempt {
	attempt, err := sync.NewAttempt(syncType, direction, entityType, entityID)
	if err != nil {
		s.logger.Warn("failed to build sync attempt record",
			zap.String("sync_type", syncType.String()),
			zap.String("entity_id", entityID),
			zap.Error(err))
		return nil
	}
	attempt.RequestData = requestData

	if err := s.logRepo.Create(ctx, attempt); err != nil {
		s.logger.Warn("failed to persist sync attempt record",
			zap.String("sync_type", syncType.String()),
			zap.String("entity_id", entityID),
			zap.Error(err))
		return nil
	}
	return attempt
}

// LogSuccess closes an attempt as successful. Safe to call with a nil
// attempt when CreateLog failed earlier.
func (s *AuditService) LogSuccess(ctx context.Context, attempt *sync.Attempt, responseData []byte) {
	if attempt == nil {
		return
	}
	if err := attempt.MarkSuccess(responseData); err != nil {
		s.logger.Warn("invalid sync attempt transition",
			zap.String("attempt_id", attempt.ID.String()),
			zap.Error(err))
		return
	}
	if err := s.logRepo.Update(ctx, attempt); err != nil {
		s.logger.Warn("failed to persist sync attempt success",
			zap.String("attempt_id", attempt.ID.String()),
			zap.Error(err))
	}
}

// LogFailure closes an attempt as failed, recording the cause
func (s *AuditService) LogFailure(ctx context.Context, attempt *sync.Attempt, cause error) {
	if attempt == nil {
		return
	}
	if err := attempt.MarkFailure(cause); err != nil {
		s.logger.Warn("invalid sync attempt transition",
			zap.String("attempt_id", attempt.ID.String()),
			zap.Error(err))
		return
	}
	if err := s.logRepo.Update(ctx, attempt); err != nil {
		s.logger.Warn("failed to persist sync attempt failure",
			zap.String("attempt_id", attempt.ID.String()),
			zap.Error(err))
	}
}

// GetLogs returns attempts matching the filter, newest first
func (s *AuditService) GetLogs(ctx context.Context, filter sync.LogFilter) ([]SyncLogResponse, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	attempts, err := s.logRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]SyncLogResponse, 0, len(attempts))
	for i := range attempts {
		responses = append(responses, ToSyncLogResponse(&attempts[i]))
	}
	return responses, nil
}

// GetLog returns a single attempt by id
func (s *AuditService) GetLog(ctx context.Context, id uuid.UUID) (*SyncLogResponse, error) {
	attempt, err := s.logRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToSyncLogResponse(attempt)
	return &response, nil
}

// GetStats aggregates attempt counts over the trailing window
func (s *AuditService) GetStats(ctx context.Context, window time.Duration) (*SyncStatsResponse, error) {
	since := time.Now().Add(-window)
	counts, err := s.logRepo.CountByStatusSince(ctx, since)
	if err != nil {
		return nil, err
	}

	var successRate float64
	if counts.Total > 0 {
		successRate = math.Round(float64(counts.Successful)/float64(counts.Total)*100*100) / 100
	}

	return &SyncStatsResponse{
		Since:       since,
		TotalSyncs:  counts.Total,
		Successful:  counts.Successful,
		Failed:      counts.Failed,
		Pending:     counts.Pending,
		SuccessRate: successRate,
	}, nil
}

// Rearm resets a failed attempt for re-dispatch. The record keeps its
// identifier and moves to the retrying state until it completes again.
func (s *AuditService) Rearm(ctx context.Context, id uuid.UUID) (*sync.Attempt, error) {
	attempt, err := s.logRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if attempt.Status != sync.StatusFailed {
		return nil, sync.ErrNotRetryable
	}
	if err := attempt.Rearm(); err != nil {
		return nil, err
	}
	if err := s.logRepo.Update(ctx, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}
