package sync

import (
	"context"
	"encoding/json"
	"errors"
	gosync "sync"

	"go.uber.org/zap"

	"github.com/syncbridge/backend/internal/domain/shared"
	"github.com/syncbridge/backend/internal/domain/sync"
)

// StageMappingService serves the deal-stage to order-status mapping used
// by the reverse sync path. The effective mapping is cached in memory and
// swapped atomically on every load or update.
type StageMappingService struct {
	configRepo sync.ConfigRepository
	logger     *zap.Logger

	mu      gosync.RWMutex
	mapping map[string]string
}

// NewStageMappingService creates the service with the built-in defaults
// active. Call Load to overlay persisted overrides.
func NewStageMappingService(configRepo sync.ConfigRepository, logger *zap.Logger) *StageMappingService {
	return &StageMappingService{
		configRepo: configRepo,
		logger:     logger,
		mapping:    sync.DefaultStageMapping(),
	}
}

// Load reads the persisted override set and overlays it on the defaults.
// Loading is fail-open: a missing or unreadable override set leaves the
// defaults active.
func (s *StageMappingService) Load(ctx context.Context) {
	raw, err := s.configRepo.Get(ctx, sync.StageMappingConfigKey)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("failed to load stage mapping overrides, using defaults", zap.Error(err))
		}
		s.swap(sync.DefaultStageMapping())
		return
	}

	var overrides map[string]string
	if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
		s.logger.Warn("malformed stage mapping overrides, using defaults", zap.Error(err))
		s.swap(sync.DefaultStageMapping())
		return
	}

	s.swap(sync.EffectiveStageMapping(overrides))
}

// Mapping returns a copy of the effective mapping
func (s *StageMappingService) Mapping() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mapping := make(map[string]string, len(s.mapping))
	for stage, status := range s.mapping {
		mapping[stage] = status
	}
	return mapping
}

// StatusForStage returns the order status mapped to a deal stage. A false
// return means the stage is outside the order-status lifecycle and should
// produce no update.
func (s *StageMappingService) StatusForStage(stage string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.mapping[stage]
	return status, ok
}

// UpdateMapping persists a new override set and activates it immediately
func (s *StageMappingService) UpdateMapping(ctx context.Context, overrides map[string]string) error {
	if len(overrides) == 0 {
		return shared.ErrInvalidInput
	}
	for stage, status := range overrides {
		if stage == "" || status == "" {
			return shared.ErrInvalidInput
		}
	}

	serialized, err := json.Marshal(overrides)
	if err != nil {
		return err
	}
	if err := s.configRepo.Set(ctx, sync.StageMappingConfigKey, string(serialized)); err != nil {
		return err
	}

	s.swap(sync.EffectiveStageMapping(overrides))
	s.logger.Info("stage mapping overrides updated", zap.Int("override_count", len(overrides)))
	return nil
}

// ResetToDefaults removes the persisted overrides and reactivates the
// built-in mapping
func (s *StageMappingService) ResetToDefaults(ctx context.Context) error {
	if err := s.configRepo.Delete(ctx, sync.StageMappingConfigKey); err != nil {
		return err
	}
	s.swap(sync.DefaultStageMapping())
	s.logger.Info("stage mapping reset to defaults")
	return nil
}

func (s *StageMappingService) swap(mapping map[string]string) {
	s.mu.Lock()
	s.mapping = mapping
	s.mu.Unlock()
}
