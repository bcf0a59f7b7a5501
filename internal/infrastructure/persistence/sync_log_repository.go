package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/syncbridge/backend/internal/domain/sync"
	"github.com/syncbridge/backend/internal/infrastructure/persistence/models"
)

// GormSyncLogRepository implements sync.LogRepository using GORM
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewGormSyncLogRepository creates a new GormSyncLogRepository
func NewGormSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

// Create inserts a new sync attempt
func (r *GormSyncLogRepository) Create(ctx context.Context, attempt *sync.Attempt) error {
	model := models.SyncLogModelFromDomain(attempt)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists state transitions of an existing attempt
func (r *GormSyncLogRepository) Update(ctx context.Context, attempt *sync.Attempt) error {
	model := models.SyncLogModelFromDomain(attempt)
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return sync.ErrAttemptNotFound
	}
	return nil
}

// FindByID finds a sync attempt by its identifier
func (r *GormSyncLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*sync.Attempt, error) {
	var model models.SyncLogModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sync.ErrAttemptNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds sync attempts matching the filter, newest first
func (r *GormSyncLogRepository) FindAll(ctx context.Context, filter sync.LogFilter) ([]sync.Attempt, error) {
	var logModels []models.SyncLogModel
	query := r.db.WithContext(ctx).Model(&models.SyncLogModel{})

	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.EntityType != nil {
		query = query.Where("entity_type = ?", *filter.EntityType)
	}
	if filter.SyncType != nil {
		query = query.Where("sync_type = ?", filter.SyncType.String())
	}

	query = query.Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	if err := query.Find(&logModels).Error; err != nil {
		return nil, err
	}

	attempts := make([]sync.Attempt, len(logModels))
	for i, model := range logModels {
		attempts[i] = *model.ToDomain()
	}
	return attempts, nil
}

// CountByStatusSince counts attempts created at or after the given instant,
// broken down by status
func (r *GormSyncLogRepository) CountByStatusSince(ctx context.Context, since time.Time) (sync.StatusCounts, error) {
	var rows []struct {
		Status string
		Count  int64
	}

	err := r.db.WithContext(ctx).
		Model(&models.SyncLogModel{}).
		Select("status, COUNT(*) as count").
		Where("created_at >= ?", since).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return sync.StatusCounts{}, err
	}

	var counts sync.StatusCounts
	for _, row := range rows {
		counts.Total += row.Count
		switch sync.Status(row.Status) {
		case sync.StatusSuccess:
			counts.Successful = row.Count
		case sync.StatusFailed:
			counts.Failed = row.Count
		case sync.StatusPending, sync.StatusRetrying:
			counts.Pending += row.Count
		}
	}
	return counts, nil
}

// Ensure GormSyncLogRepository implements sync.LogRepository
var _ sync.LogRepository = (*GormSyncLogRepository)(nil)
