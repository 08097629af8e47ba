package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestScheduleRunsJob(t *testing.T) {
	s := New(time.UTC, zap.NewNop())

	var runs atomic.Int32
	_, err := s.Schedule("@every 1s", "tick", func() error {
		runs.Add(1)
		return errors.New("logged, not fatal")
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	s := New(nil, nil)

	_, err := s.Schedule("", "empty", func() error { return nil })
	assert.Error(t, err)

	_, err = s.Schedule("every minute please", "garbage", func() error { return nil })
	assert.Error(t, err)

	_, err = s.Schedule("*/5 * * * * *", "seconds", func() error { return nil })
	assert.NoError(t, err, "seconds field is optional but accepted")
	assert.Equal(t, 1, s.Len())
}
