package machines

import (
	"context"
	"sync"
	"time"

	"rackops/core/inventory"
	"rackops/core/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Inventory is the part of the Racktables store used by lookups.
type Inventory interface {
	ActiveServers(ctx context.Context) ([]inventory.Machine, error)
	FindAllocation(ctx context.Context, ip string) ([]inventory.Allocation, error)
	FreeIP(ctx context.Context, network string, offset int) (string, error)
}

// Service answers inventory lookups. Concurrent listings share one query and
// the result is reused for ttl.
type Service struct {
	inv    Inventory
	logger *zap.Logger
	ttl    time.Duration

	sf     singleflight.Group
	mu     sync.RWMutex
	cached []inventory.Machine
	built  time.Time
}

// NewService creates a lookup service. A zero ttl disables caching.
func NewService(inv Inventory, logger *zap.Logger, ttl time.Duration) *Service {
	return &Service{inv: inv, logger: logger, ttl: ttl}
}

// List returns the active machines.
func (s *Service) List(ctx context.Context) ([]inventory.Machine, error) {
	if cached, ok := s.fresh(); ok {
		return cached, nil
	}

	// The query outlives any single caller.
	shared := context.WithoutCancel(ctx)
	v, err, coalesced := s.sf.Do("active", func() (any, error) {
		machines, err := s.inv.ActiveServers(shared)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cached = machines
		s.built = time.Now()
		s.mu.Unlock()
		return machines, nil
	})
	if err != nil {
		return nil, err
	}
	if coalesced {
		s.logger.Debug("Machine listing shared between callers")
	}
	return v.([]inventory.Machine), nil
}

func (s *Service) fresh() ([]inventory.Machine, bool) {
	if s.ttl <= 0 {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cached == nil || time.Since(s.built) > s.ttl {
		return nil, false
	}
	return s.cached, true
}

// Search returns the active machines whose name matches pattern from its start.
func (s *Service) Search(ctx context.Context, pattern string) ([]inventory.Machine, error) {
	re, err := inventory.NamePattern(pattern)
	if err != nil {
		return nil, err
	}

	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	return inventory.FilterByName(all, re), nil
}

// Owners returns the allocations of an address. Empty means free.
func (s *Service) Owners(ctx context.Context, ip string) ([]inventory.Allocation, error) {
	if _, err := utils.IPToInt(ip); err != nil {
		return nil, err
	}
	return s.inv.FindAllocation(ctx, ip)
}

// FreeIP returns the first free address of a named network at or after offset.
func (s *Service) FreeIP(ctx context.Context, network string, offset int) (string, error) {
	return s.inv.FreeIP(ctx, network, offset)
}
