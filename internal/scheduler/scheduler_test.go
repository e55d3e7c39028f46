package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HA2077/SmartChef/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.LevelError, Format: "text", Output: "stderr"})
}

func TestSchedulerRunsRefreshers(t *testing.T) {
	sched := New(10*time.Millisecond, testLogger())

	var ticks atomic.Int64
	sched.Register("counter", func() { ticks.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	sched.Start(ctx)

	require.Eventually(t, func() bool { return ticks.Load() >= 3 },
		time.Second, 5*time.Millisecond)

	cancel()
	sched.Stop()
}

func TestSchedulerRunsImmediately(t *testing.T) {
	sched := New(time.Hour, testLogger())

	ran := make(chan struct{})
	sched.Register("first", func() { close(ran) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sched.Start(ctx)
	defer sched.Stop()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("first refresh did not run at start")
	}
}

func TestSchedulerMultipleRefreshers(t *testing.T) {
	sched := New(10*time.Millisecond, testLogger())

	var a, b atomic.Int64
	sched.Register("a", func() { a.Add(1) })
	sched.Register("b", func() { b.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	sched.Start(ctx)

	require.Eventually(t, func() bool { return a.Load() >= 2 && b.Load() >= 2 },
		time.Second, 5*time.Millisecond)

	cancel()
	sched.Stop()
}

func TestSchedulerStopHalts(t *testing.T) {
	sched := New(10*time.Millisecond, testLogger())

	var ticks atomic.Int64
	sched.Register("counter", func() { ticks.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	sched.Start(ctx)

	require.Eventually(t, func() bool { return ticks.Load() >= 1 },
		time.Second, 5*time.Millisecond)

	cancel()
	sched.Stop()

	settled := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, ticks.Load())
}
