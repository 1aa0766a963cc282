package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type countingRefresher struct {
	calls   atomic.Int32
	err     error
	block   chan struct{}
	started chan struct{}
	once    sync.Once
}

func (c *countingRefresher) LoadAll(ctx context.Context) error {
	c.calls.Add(1)
	if c.started != nil {
		c.once.Do(func() { close(c.started) })
	}
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return c.err
}

func TestRefreshTriggerConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultRefreshTriggerConfig().Validate())
	assert.ErrorIs(t, RefreshTriggerConfig{}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, RefreshTriggerConfig{Interval: time.Second, Timeout: -1}.Validate(), ErrInvalidConfig)

	_, err := NewRefreshTrigger(RefreshTriggerConfig{}, &countingRefresher{}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRefreshTrigger_StartStop(t *testing.T) {
	refresher := &countingRefresher{}
	trigger, err := NewRefreshTrigger(RefreshTriggerConfig{Interval: 10 * time.Millisecond, OnStart: true}, refresher, nil)
	require.NoError(t, err)

	require.NoError(t, trigger.Start(context.Background()))
	require.NoError(t, trigger.Start(context.Background()))
	assert.True(t, trigger.IsRunning())

	require.Eventually(t, func() bool { return refresher.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, trigger.Stop(ctx))
	require.NoError(t, trigger.Stop(ctx))
	assert.False(t, trigger.IsRunning())

	calls := refresher.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, refresher.calls.Load())

	last := trigger.LastResult()
	require.NotNil(t, last)
	assert.NoError(t, last.Err)
}

func TestRefreshTrigger_TriggerRefresh(t *testing.T) {
	t.Run("failure is returned and logged", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		refresher := &countingRefresher{err: errors.New("collection payments: connection refused")}
		trigger, err := NewRefreshTrigger(DefaultRefreshTriggerConfig(), refresher, zap.New(core))
		require.NoError(t, err)

		err = trigger.TriggerRefresh(context.Background())
		assert.ErrorIs(t, err, refresher.err)
		assert.Equal(t, 1, logs.FilterMessage("Collection refresh failed").Len())
		require.NotNil(t, trigger.LastResult())
		assert.ErrorIs(t, trigger.LastResult().Err, refresher.err)
	})

	t.Run("overlapping refresh is rejected", func(t *testing.T) {
		refresher := &countingRefresher{block: make(chan struct{}), started: make(chan struct{})}
		trigger, err := NewRefreshTrigger(DefaultRefreshTriggerConfig(), refresher, nil)
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() { done <- trigger.TriggerRefresh(context.Background()) }()
		<-refresher.started

		assert.ErrorIs(t, trigger.TriggerRefresh(context.Background()), ErrRefreshInProgress)
		close(refresher.block)
		assert.NoError(t, <-done)
		assert.Equal(t, int32(1), refresher.calls.Load())
	})

	t.Run("timeout bounds the refresh", func(t *testing.T) {
		refresher := &countingRefresher{block: make(chan struct{})}
		trigger, err := NewRefreshTrigger(RefreshTriggerConfig{Interval: time.Minute, Timeout: 10 * time.Millisecond}, refresher, nil)
		require.NoError(t, err)

		err = trigger.TriggerRefresh(context.Background())
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
