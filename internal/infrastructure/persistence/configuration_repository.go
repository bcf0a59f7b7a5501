package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/syncbridge/backend/internal/domain/shared"
	"github.com/syncbridge/backend/internal/domain/sync"
	"github.com/syncbridge/backend/internal/infrastructure/persistence/models"
)

// GormConfigRepository implements sync.ConfigRepository using GORM
type GormConfigRepository struct {
	db *gorm.DB
}

// NewGormConfigRepository creates a new GormConfigRepository
func NewGormConfigRepository(db *gorm.DB) *GormConfigRepository {
	return &GormConfigRepository{db: db}
}

// Get returns the serialized value for a key
func (r *GormConfigRepository) Get(ctx context.Context, key string) (string, error) {
	var model models.ConfigurationModel
	if err := r.db.WithContext(ctx).First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return model.Value, nil
}

// Set creates or replaces the value for a key
func (r *GormConfigRepository) Set(ctx context.Context, key, value string) error {
	model := models.ConfigurationModel{Key: key, Value: value}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&model).Error
}

// Delete removes a key; deleting a missing key is not an error
func (r *GormConfigRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&models.ConfigurationModel{}, "key = ?", key).Error
}

// Ensure GormConfigRepository implements sync.ConfigRepository
var _ sync.ConfigRepository = (*GormConfigRepository)(nil)
