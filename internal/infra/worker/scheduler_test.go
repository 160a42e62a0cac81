package worker

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewScheduler_RejectsBadInput(t *testing.T) {
	noop := func(context.Context) {}

	_, err := NewScheduler("not a schedule", "UTC", discardLogger(), noop)
	assert.Error(t, err)

	_, err = NewScheduler("*/5 * * * *", "Nowhere/City", discardLogger(), noop)
	assert.Error(t, err)
}

func TestScheduler_RunsJobAndStops(t *testing.T) {
	var runs atomic.Int32
	done := make(chan struct{}, 1)

	s, err := NewScheduler("@every 1s", "UTC", discardLogger(), func(ctx context.Context) {
		runs.Add(1)
		select {
		case done <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)

	s.Start()
	assert.False(t, s.Next().IsZero())

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
	s.Stop()
	assert.GreaterOrEqual(t, runs.Load(), int32(1))
}

func TestScheduler_StopCancelsRunningJob(t *testing.T) {
	started := make(chan struct{})
	finished := make(chan error, 1)

	s, err := NewScheduler("@every 1s", "UTC", discardLogger(), func(ctx context.Context) {
		select {
		case started <- struct{}{}:
		default:
			return
		}
		<-ctx.Done()
		finished <- ctx.Err()
	})
	require.NoError(t, err)

	s.Start()
	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not start")
	}

	s.Stop()
	select {
	case err := <-finished:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("running job was not cancelled")
	}
}
