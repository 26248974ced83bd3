package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	errA, errB := errors.New("a"), errors.New("b")
	err := errs.Add(errA, nil, errB).Aggregate()
	require.Error(t, err)
	require.Equal(t, "a; b", err.Error())
	require.ErrorIs(t, err, errB)
}

func TestRunnerWait(t *testing.T) {
	failure := errors.New("failure")
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunnerWith(ctx)
	r.Go(
		NamedRun("canceled", RunnableFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})),
		RunnableFunc(func(context.Context) error { return failure }),
	)
	cancel()
	err := r.Wait()
	require.ErrorIs(t, err, failure)
	var agg *AggregatedError
	require.True(t, errors.As(err, &agg))
	require.Len(t, agg.Errors, 1)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestRunWithContextCloser(t *testing.T) {
	unblock := make(chan struct{})
	closed := 0
	closer := closerFunc(func() error {
		closed++
		close(unblock)
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunWithContextCloser(ctx, closer, func() error {
		<-unblock
		return errors.New("closed")
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, closed)
}

func TestLoopTriggerNext(t *testing.T) {
	loop := NewLoop()
	loop.Interval = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	var levels []int
	loop.AddController(PrLvApp, ControlFunc(func(cc ControlContext) error {
		levels = append(levels, cc.PriorityLevel())
		cancel()
		return nil
	}))
	loop.AddController(PrLvLink, ControlFunc(func(cc ControlContext) error {
		levels = append(levels, cc.PriorityLevel())
		require.False(t, cc.Time().IsZero())
		return nil
	}))
	loop.TriggerNext()
	require.ErrorIs(t, loop.Run(ctx), context.Canceled)
	require.Equal(t, []int{PrLvLink, PrLvApp}, levels)
}
