package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lead-system/internal/repositories"
	"lead-system/pkg/constants"
)

type CapabilityServiceInterface interface {
	GetRoleCapabilities(ctx context.Context, role constants.Role) (map[string]bool, error)
	InvalidateRoleCache(ctx context.Context, role constants.Role) error
}

// CapabilityService resolves role capabilities through a redis cache; the
// database is only hit on a miss.
type CapabilityService struct {
	capabilityRepo repositories.CapabilityRepositoryInterface
	cacheRepo      repositories.CacheRepositoryInterface
	logger         *zap.Logger
	cacheTTL       time.Duration
}

func NewCapabilityService(
	capabilityRepo repositories.CapabilityRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	logger *zap.Logger,
	cacheTTL time.Duration,
) CapabilityServiceInterface {
	return &CapabilityService{
		capabilityRepo: capabilityRepo,
		cacheRepo:      cacheRepo,
		logger:         logger,
		cacheTTL:       cacheTTL,
	}
}

func cacheKeyForRole(role constants.Role) string {
	return fmt.Sprintf("auth:capabilities:role:%s", role)
}

func (s *CapabilityService) GetRoleCapabilities(ctx context.Context, role constants.Role) (map[string]bool, error) {
	key := cacheKeyForRole(role)

	if cached, err := s.cacheRepo.Get(ctx, key); err == nil {
		var names []string
		if err := json.Unmarshal([]byte(cached), &names); err == nil {
			return toSet(names), nil
		}
		s.logger.Warn("failed to decode cached capabilities", zap.String("key", key), zap.Error(err))
	}

	names, err := s.capabilityRepo.GetCapabilityNamesByRole(ctx, role)
	if err != nil {
		s.logger.Error("failed to load capabilities from database", zap.String("role", string(role)), zap.Error(err))
		return nil, err
	}

	if encoded, err := json.Marshal(names); err == nil {
		if err := s.cacheRepo.Set(ctx, key, string(encoded), s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache role capabilities", zap.String("role", string(role)), zap.Error(err))
		}
	}
	return toSet(names), nil
}

func (s *CapabilityService) InvalidateRoleCache(ctx context.Context, role constants.Role) error {
	if err := s.cacheRepo.Del(ctx, cacheKeyForRole(role)); err != nil {
		s.logger.Error("failed to invalidate capability cache", zap.String("role", string(role)), zap.Error(err))
		return err
	}
	return nil
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
