package notification

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phonefeed-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct{ mock.Mock }

func (m *mockSender) Send(ctx context.Context, token, title, body string) error {
	return m.Called(ctx, token, title, body).Error(0)
}

// recordingSender collects delivered notifications; fail makes every send error.
type recordingSender struct {
	mu    sync.Mutex
	sent  []domain.PushNotification
	calls atomic.Int32
	fail  bool
	block chan struct{}
}

func (r *recordingSender) Send(ctx context.Context, token, title, body string) error {
	r.calls.Add(1)
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if r.fail {
		return errors.New("unreachable")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, domain.PushNotification{Token: token, Title: title, Body: body})
	return nil
}

func (r *recordingSender) delivered() []domain.PushNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.PushNotification(nil), r.sent...)
}

var otpNote = domain.PushNotification{Token: "fcm-1", Title: "Your OTP Code", Body: "Your OTP is 1234"}

func TestDeliver_SucceedsFirstAttempt(t *testing.T) {
	s := &mockSender{}
	s.On("Send", mock.Anything, "fcm-1", "Your OTP Code", "Your OTP is 1234").Return(nil).Once()

	d := NewDeliverer(s, DeliveryOptions{MaxAttempts: 3, Backoff: time.Millisecond})
	require.NoError(t, d.Deliver(context.Background(), otpNote))
	s.AssertExpectations(t)
}

func TestDeliver_RetriesThenSucceeds(t *testing.T) {
	s := &mockSender{}
	s.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("timeout")).Twice()
	s.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	d := NewDeliverer(s, DeliveryOptions{MaxAttempts: 3, Backoff: time.Millisecond})
	require.NoError(t, d.Deliver(context.Background(), otpNote))
	s.AssertNumberOfCalls(t, "Send", 3)
}

func TestDeliver_GivesUpAfterMaxAttempts(t *testing.T) {
	s := &mockSender{}
	s.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("invalid token"))

	d := NewDeliverer(s, DeliveryOptions{MaxAttempts: 2, Backoff: time.Millisecond})
	err := d.Deliver(context.Background(), otpNote)
	assert.ErrorContains(t, err, "after 2 attempts")
	assert.ErrorContains(t, err, "invalid token")
	s.AssertNumberOfCalls(t, "Send", 2)
}

func TestDeliver_StopsOnCancelledContext(t *testing.T) {
	s := &mockSender{}
	s.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("timeout"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewDeliverer(s, DeliveryOptions{MaxAttempts: 5, Backoff: time.Hour})
	err := d.Deliver(ctx, otpNote)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeliver_Throttled(t *testing.T) {
	s := &recordingSender{}
	d := NewDeliverer(s, DeliveryOptions{MaxAttempts: 1, RatePerSec: 20})

	start := time.Now()
	for i := 0; i < 25; i++ {
		require.NoError(t, d.Deliver(context.Background(), otpNote))
	}
	// 20 from the initial burst, the remaining 5 at 50ms intervals.
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
	assert.Len(t, s.delivered(), 25)
}

func TestWorker_DeliversAndDrainsOnStop(t *testing.T) {
	s := &recordingSender{}
	w := NewWorker(NewDeliverer(s, DeliveryOptions{MaxAttempts: 1}), 2, 16)

	for i := 0; i < 10; i++ {
		require.NoError(t, w.Enqueue(context.Background(), otpNote))
	}
	require.NoError(t, w.Stop(context.Background()))
	assert.Len(t, s.delivered(), 10)

	assert.ErrorIs(t, w.Enqueue(context.Background(), otpNote), ErrStopped)
	assert.NoError(t, w.Stop(context.Background()))
}

func TestWorker_FailuresAreSwallowed(t *testing.T) {
	s := &recordingSender{fail: true}
	w := NewWorker(NewDeliverer(s, DeliveryOptions{MaxAttempts: 2, Backoff: time.Millisecond}), 1, 4)

	require.NoError(t, w.Enqueue(context.Background(), otpNote))
	require.NoError(t, w.Stop(context.Background()))
	assert.Equal(t, int32(2), s.calls.Load())
	assert.Empty(t, s.delivered())
}

func TestWorker_QueueFull(t *testing.T) {
	s := &recordingSender{block: make(chan struct{})}
	w := NewWorker(NewDeliverer(s, DeliveryOptions{MaxAttempts: 1}), 1, 1)

	require.NoError(t, w.Enqueue(context.Background(), otpNote))
	require.Eventually(t, func() bool { return s.calls.Load() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, w.Enqueue(context.Background(), otpNote))
	assert.ErrorIs(t, w.Enqueue(context.Background(), otpNote), ErrQueueFull)

	close(s.block)
	require.NoError(t, w.Stop(context.Background()))
	assert.Len(t, s.delivered(), 2)
}

func TestWorker_StopTimeoutCancelsInFlight(t *testing.T) {
	s := &recordingSender{block: make(chan struct{})}
	w := NewWorker(NewDeliverer(s, DeliveryOptions{MaxAttempts: 1}), 1, 1)
	require.NoError(t, w.Enqueue(context.Background(), otpNote))
	require.Eventually(t, func() bool { return s.calls.Load() == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, w.Stop(ctx), context.DeadlineExceeded)
}
