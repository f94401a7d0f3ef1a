package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/substratehq/substrate/engine/auth/model"
	"github.com/substratehq/substrate/engine/core"
	"github.com/substratehq/substrate/pkg/logger"
	"golang.org/x/time/rate"
)

// Config holds rate limiting configuration
type Config struct {
	// Requests per second per API key when no custom limit is provided
	DefaultRequestsPerSecond int
	// Burst capacity per API key
	DefaultBurstCapacity int
	// Cleanup interval for unused limiters
	CleanupInterval time.Duration
	// How long to keep unused limiters before reclaiming them
	LimiterExpiry time.Duration
}

// DefaultConfig returns default rate limiting configuration
func DefaultConfig() *Config {
	return &Config{
		DefaultRequestsPerSecond: 100,
		DefaultBurstCapacity:     20,
		CleanupInterval:          time.Hour,
		LimiterExpiry:            24 * time.Hour,
	}
}

// limiterEntry holds a rate limiter and its last access time
type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Service enforces a token-bucket rate limit per API key
type Service struct {
	mu       sync.RWMutex
	limiters map[string]*limiterEntry
	config   *Config
	done     chan struct{}
}

// NewService creates a new rate limiting service
func NewService(config *Config) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	s := &Service{
		limiters: make(map[string]*limiterEntry),
		config:   config,
		done:     make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// Stop stops the cleanup loop
func (s *Service) Stop() {
	close(s.done)
}

// CheckRateLimit checks if a request is allowed for the given API key.
// customLimit, when set, is in requests per hour.
func (s *Service) CheckRateLimit(_ context.Context, apiKeyID core.ID, customLimit *int) error {
	limiter := s.getLimiter(apiKeyID.String(), customLimit)
	if !limiter.Allow() {
		return core.NewError(nil, model.ErrCodeRateLimited, map[string]any{
			"api_key_id": apiKeyID,
			"limit_rps":  limiter.Limit(),
			"burst":      limiter.Burst(),
		})
	}
	return nil
}

// getLimiter gets or creates a rate limiter for the given key
func (s *Service) getLimiter(keyID string, customLimit *int) *rate.Limiter {
	s.mu.RLock()
	entry, exists := s.limiters[keyID]
	s.mu.RUnlock()
	if exists {
		s.mu.Lock()
		entry.lastAccess = time.Now()
		s.mu.Unlock()
		if customLimit != nil {
			// Custom limits are per hour, limiter works in per second
			customLimitRPS := float64(*customLimit) / 3600.0
			if entry.limiter.Limit() != rate.Limit(customLimitRPS) {
				s.mu.Lock()
				entry.limiter.SetLimit(rate.Limit(customLimitRPS))
				s.mu.Unlock()
			}
		}
		return entry.limiter
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// Double-check pattern
	if entry, exists := s.limiters[keyID]; exists {
		entry.lastAccess = time.Now()
		return entry.limiter
	}
	limitRPS := float64(s.config.DefaultRequestsPerSecond)
	if customLimit != nil && *customLimit > 0 {
		limitRPS = float64(*customLimit) / 3600.0
	}
	limiter := rate.NewLimiter(
		rate.Limit(limitRPS),
		s.config.DefaultBurstCapacity,
	)
	s.limiters[keyID] = &limiterEntry{
		limiter:    limiter,
		lastAccess: time.Now(),
	}
	return limiter
}

func (s *Service) cleanupLoop() {
	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.done:
			return
		}
	}
}

// cleanup removes limiters not used within LimiterExpiry
func (s *Service) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	expired := 0
	for keyID, entry := range s.limiters {
		if now.Sub(entry.lastAccess) > s.config.LimiterExpiry {
			delete(s.limiters, keyID)
			expired++
		}
	}
	if expired > 0 {
		log := logger.FromContext(context.Background())
		log.With("expired_count", expired, "remaining_count", len(s.limiters)).
			Debug("Cleaned up expired rate limiters")
	}
}

// GetStats returns statistics about the rate limiter
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"total_limiters": len(s.limiters),
		"config":         s.config,
	}
}
