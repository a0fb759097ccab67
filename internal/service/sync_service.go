package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/plant-attendance-api/internal/reconcile"
	"github.com/noah-isme/plant-attendance-api/internal/store"
	appErrors "github.com/noah-isme/plant-attendance-api/pkg/errors"
)

// SyncService reports connectivity and runs reconciliation passes. Only
// one pass runs at a time; a second request while one is in flight is
// rejected rather than interleaved.
type SyncService struct {
	router *store.Router
	logger *zap.Logger

	mu      sync.Mutex
	running bool
	last    *SyncOutcome
}

// NewSyncService constructs a SyncService instance.
func NewSyncService(router *store.Router, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{router: router, logger: logger}
}

// SyncStatus is the connectivity indicator surfaced to clients.
type SyncStatus struct {
	Online           bool         `json:"online"`
	RemoteConfigured bool         `json:"remote_configured"`
	PendingChanges   int          `json:"pending_changes"`
	LastSync         *SyncOutcome `json:"last_sync,omitempty"`
}

// SyncOutcome records one finished pass.
type SyncOutcome struct {
	StartedAt  time.Time        `json:"started_at"`
	Duration   time.Duration    `json:"duration_ms"`
	Result     reconcile.Result `json:"result"`
	PartialErr string           `json:"partial_error,omitempty"`
}

// Status never fails on connectivity problems; being offline is a
// reportable state, not an error.
func (s *SyncService) Status(ctx context.Context) (*SyncStatus, error) {
	pending, err := s.router.Local().PendingCount(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	return &SyncStatus{
		Online:           s.router.Online(ctx),
		RemoteConfigured: s.router.Remote() != nil,
		PendingChanges:   pending,
		LastSync:         last,
	}, nil
}

// Run executes one reconciliation pass against the remote store.
func (s *SyncService) Run(ctx context.Context) (*SyncOutcome, error) {
	if s.router.Remote() == nil {
		return nil, appErrors.Clone(appErrors.ErrConnectivity, "no remote store configured")
	}
	if !s.router.Online(ctx) {
		return nil, appErrors.Clone(appErrors.ErrConnectivity, "")
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrConflict, "a sync pass is already running")
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	started := time.Now()
	engine := reconcile.New(s.router.Local(), s.router.Remote(), s.logger)
	result, err := engine.Run(ctx)

	outcome := &SyncOutcome{
		StartedAt: started.UTC(),
		Duration:  time.Since(started) / time.Millisecond,
		Result:    result,
	}
	if err != nil {
		if !appErrors.Is(err, appErrors.ErrSyncPartial) {
			return nil, err
		}
		outcome.PartialErr = err.Error()
	}

	s.mu.Lock()
	s.last = outcome
	s.mu.Unlock()

	s.logger.Info("sync pass finished",
		zap.Int("workers", result.Workers),
		zap.Int("attendance", result.Attendance),
		zap.Int("replayed", result.Replayed),
		zap.Int("failed", result.Failed))
	return outcome, err
}
