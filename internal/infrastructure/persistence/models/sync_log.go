package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/syncbridge/backend/internal/domain/sync"
)

// SyncLogModel is the persistence model for sync attempts
type SyncLogModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	SyncType     string    `gorm:"type:varchar(50);not null;index"`
	Direction    string    `gorm:"type:varchar(50);not null"`
	EntityType   string    `gorm:"type:varchar(50);not null;index"`
	EntityID     string    `gorm:"type:varchar(255);not null;index"`
	Status       string    `gorm:"type:varchar(20);not null;index"`
	Attempts     int       `gorm:"not null;default:0"`
	ErrorMessage string    `gorm:"type:text"`
	RequestData  []byte    `gorm:"type:jsonb"`
	ResponseData []byte    `gorm:"type:jsonb"`
	StartedAt    time.Time `gorm:"not null"`
	CompletedAt  *time.Time
	DurationMs   *int64
	CreatedAt    time.Time `gorm:"not null;index"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName specifies the table name
func (SyncLogModel) TableName() string {
	return "sync_logs"
}

// ToDomain converts the persistence model to a domain attempt
func (m *SyncLogModel) ToDomain() *sync.Attempt {
	return &sync.Attempt{
		ID:           m.ID,
		SyncType:     sync.Type(m.SyncType),
		Direction:    sync.Direction(m.Direction),
		EntityType:   m.EntityType,
		EntityID:     m.EntityID,
		Status:       sync.Status(m.Status),
		Attempts:     m.Attempts,
		ErrorMessage: m.ErrorMessage,
		RequestData:  m.RequestData,
		ResponseData: m.ResponseData,
		StartedAt:    m.StartedAt,
		CompletedAt:  m.CompletedAt,
		DurationMs:   m.DurationMs,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// SyncLogModelFromDomain converts a domain attempt to the persistence model
func SyncLogModelFromDomain(a *sync.Attempt) *SyncLogModel {
	return &SyncLogModel{
		ID:           a.ID,
		SyncType:     a.SyncType.String(),
		Direction:    a.Direction.String(),
		EntityType:   a.EntityType,
		EntityID:     a.EntityID,
		Status:       a.Status.String(),
		Attempts:     a.Attempts,
		ErrorMessage: a.ErrorMessage,
		RequestData:  a.RequestData,
		ResponseData: a.ResponseData,
		StartedAt:    a.StartedAt,
		CompletedAt:  a.CompletedAt,
		DurationMs:   a.DurationMs,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// ConfigurationModel is the persistence model for key/value configuration
// entries such as the stage mapping overrides
type ConfigurationModel struct {
	Key       string    `gorm:"type:varchar(255);primary_key"`
	Value     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name
func (ConfigurationModel) TableName() string {
	return "configurations"
}
