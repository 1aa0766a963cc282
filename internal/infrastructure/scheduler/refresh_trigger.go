package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Refresher reloads every collection from the document store
type Refresher interface {
	LoadAll(ctx context.Context) error
}

// RefreshTriggerConfig holds configuration for the refresh trigger
type RefreshTriggerConfig struct {
	// Interval between periodic refreshes
	Interval time.Duration
	// Timeout bounds a single refresh
	Timeout time.Duration
	// OnStart runs one refresh immediately when the trigger starts
	OnStart bool
}

// DefaultRefreshTriggerConfig returns default refresh trigger configuration
func DefaultRefreshTriggerConfig() RefreshTriggerConfig {
	return RefreshTriggerConfig{
		Interval: 15 * time.Minute,
		Timeout:  2 * time.Minute,
		OnStart:  true,
	}
}

// Validate checks the configuration
func (c RefreshTriggerConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// RefreshResult describes the last completed refresh
type RefreshResult struct {
	StartedAt time.Time
	Duration  time.Duration
	Err       error
}

// RefreshTrigger periodically reloads all collections
type RefreshTrigger struct {
	config    RefreshTriggerConfig
	refresher Refresher
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	last      *RefreshResult

	// serializes refreshes so a manual one never overlaps a tick
	refreshMu sync.Mutex
}

// NewRefreshTrigger creates a new refresh trigger
func NewRefreshTrigger(config RefreshTriggerConfig, refresher Refresher, logger *zap.Logger) (*RefreshTrigger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefreshTrigger{
		config:    config,
		refresher: refresher,
		logger:    logger,
	}, nil
}

// Start starts the refresh loop
func (r *RefreshTrigger) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.isRunning {
		r.mu.Unlock()
		return nil
	}
	r.isRunning = true
	r.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go r.runLoop(ctx)

	r.logger.Info("Refresh trigger started",
		zap.Duration("interval", r.config.Interval),
		zap.Duration("timeout", r.config.Timeout),
		zap.Bool("on_start", r.config.OnStart),
	)
	return nil
}

// Stop stops the refresh loop and waits for an in-flight refresh
func (r *RefreshTrigger) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.isRunning {
		r.mu.Unlock()
		return nil
	}
	r.isRunning = false
	r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("Refresh trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (r *RefreshTrigger) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isRunning
}

// LastResult returns the last completed refresh, or nil
func (r *RefreshTrigger) LastResult() *RefreshResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return nil
	}
	res := *r.last
	return &res
}

func (r *RefreshTrigger) runLoop(ctx context.Context) {
	defer r.wg.Done()

	if r.config.OnStart {
		_ = r.refresh(ctx)
	}

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = r.refresh(ctx)
		}
	}
}

// TriggerRefresh runs a refresh now. It fails with ErrRefreshInProgress
// instead of queueing behind a running one.
func (r *RefreshTrigger) TriggerRefresh(ctx context.Context) error {
	if !r.refreshMu.TryLock() {
		return ErrRefreshInProgress
	}
	defer r.refreshMu.Unlock()
	return r.run(ctx)
}

func (r *RefreshTrigger) refresh(ctx context.Context) error {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()
	return r.run(ctx)
}

func (r *RefreshTrigger) run(ctx context.Context) error {
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	err := r.refresher.LoadAll(ctx)
	result := &RefreshResult{StartedAt: start, Duration: time.Since(start), Err: err}

	r.mu.Lock()
	r.last = result
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("Collection refresh failed",
			zap.Duration("duration", result.Duration),
			zap.Error(err),
		)
		return err
	}
	r.logger.Info("Collection refresh completed", zap.Duration("duration", result.Duration))
	return nil
}
