package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voxgate/voxgate/internal/core/speech"
)

type stubRecognizer struct {
	result *speech.Result
	err    error
	closed atomic.Bool
}

func (s *stubRecognizer) Transcribe(ctx context.Context, path string) (*speech.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubRecognizer) Close() error {
	s.closed.Store(true)
	return nil
}

func TestManagerConstructsOnFirstAcquire(t *testing.T) {
	rec := &stubRecognizer{}
	var constructions int32
	manager := NewManager(func() (speech.Recognizer, error) {
		atomic.AddInt32(&constructions, 1)
		return rec, nil
	}, ManagerConfig{})

	require.Equal(t, StatusAbsent, manager.Status())

	got, err := manager.Acquire(context.Background())
	require.NoError(t, err)
	require.Same(t, rec, got.(*stubRecognizer))
	require.Equal(t, StatusReady, manager.Status())

	got, err = manager.Acquire(context.Background())
	require.NoError(t, err)
	require.Same(t, rec, got.(*stubRecognizer))
	require.EqualValues(t, 1, atomic.LoadInt32(&constructions))
}

func TestManagerConcurrentAcquireConstructsOnce(t *testing.T) {
	rec := &stubRecognizer{}
	var constructions int32
	manager := NewManager(func() (speech.Recognizer, error) {
		atomic.AddInt32(&constructions, 1)
		time.Sleep(100 * time.Millisecond)
		return rec, nil
	}, ManagerConfig{})

	const callers = 8
	results := make([]speech.Recognizer, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := manager.Acquire(context.Background())
			if err != nil {
				t.Errorf("acquire %d: %v", i, err)
				return
			}
			results[i] = got
		}(i)
	}
	wg.Wait()

	require.EqualValues(t, 1, atomic.LoadInt32(&constructions))
	for i := 0; i < callers; i++ {
		require.Same(t, rec, results[i].(*stubRecognizer))
	}
}

func TestManagerConstructionFailureResetsAndRetries(t *testing.T) {
	boom := errors.New("model file missing")
	rec := &stubRecognizer{}
	var calls int32
	manager := NewManager(func() (speech.Recognizer, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, boom
		}
		return rec, nil
	}, ManagerConfig{})

	_, err := manager.Acquire(context.Background())
	require.ErrorIs(t, err, ErrConstructionFailed)
	require.Equal(t, StatusAbsent, manager.Status())

	got, err := manager.Acquire(context.Background())
	require.NoError(t, err)
	require.Same(t, rec, got.(*stubRecognizer))
	require.Equal(t, StatusReady, manager.Status())
}

func TestManagerConcurrentAcquireSharesFailure(t *testing.T) {
	boom := errors.New("out of memory")
	manager := NewManager(func() (speech.Recognizer, error) {
		time.Sleep(50 * time.Millisecond)
		return nil, boom
	}, ManagerConfig{})

	const callers = 4
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = manager.Acquire(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.ErrorIs(t, errs[i], ErrConstructionFailed)
	}
}

func TestManagerEvictsAfterIdleTimeout(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := &stubRecognizer{}
	manager := NewManager(func() (speech.Recognizer, error) {
		return rec, nil
	}, ManagerConfig{
		IdleTimeout: 10 * time.Minute,
		Clock:       func() time.Time { return now },
	})

	_, err := manager.Acquire(context.Background())
	require.NoError(t, err)

	// 11 minutes idle, 10 minute timeout: the next sweep evicts.
	now = now.Add(11 * time.Minute)
	require.True(t, manager.EvictIfIdle())
	require.True(t, rec.closed.Load())
	require.Equal(t, StatusAbsent, manager.Status())

	// The following acquire reconstructs.
	got, err := manager.Acquire(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, StatusReady, manager.Status())
}

func TestManagerSweepKeepsRecentlyUsedResource(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	manager := NewManager(func() (speech.Recognizer, error) {
		return &stubRecognizer{}, nil
	}, ManagerConfig{
		IdleTimeout: 10 * time.Minute,
		Clock:       func() time.Time { return now },
	})

	_, err := manager.Acquire(context.Background())
	require.NoError(t, err)

	now = now.Add(9 * time.Minute)
	require.False(t, manager.EvictIfIdle())
	require.Equal(t, StatusReady, manager.Status())
}

func TestManagerAcquireRefreshesLastUsed(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	manager := NewManager(func() (speech.Recognizer, error) {
		return &stubRecognizer{}, nil
	}, ManagerConfig{
		IdleTimeout: 10 * time.Minute,
		Clock:       func() time.Time { return now },
	})

	_, err := manager.Acquire(context.Background())
	require.NoError(t, err)

	// Keep touching the resource just inside the timeout; it must survive.
	for i := 0; i < 3; i++ {
		now = now.Add(9 * time.Minute)
		_, err = manager.Acquire(context.Background())
		require.NoError(t, err)
		require.False(t, manager.EvictIfIdle())
	}
}

func TestManagerStopEvictsResource(t *testing.T) {
	rec := &stubRecognizer{}
	manager := NewManager(func() (speech.Recognizer, error) {
		return rec, nil
	}, ManagerConfig{SweepInterval: time.Hour})
	manager.Start()

	_, err := manager.Acquire(context.Background())
	require.NoError(t, err)

	manager.Stop()
	require.True(t, rec.closed.Load())
	require.Equal(t, StatusAbsent, manager.Status())
}

func TestManagerAcquireHonorsCancelledContext(t *testing.T) {
	manager := NewManager(func() (speech.Recognizer, error) {
		return &stubRecognizer{}, nil
	}, ManagerConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := manager.Acquire(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
