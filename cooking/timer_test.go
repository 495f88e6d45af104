package cooking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recordingNotifier) Notify(_ context.Context, msg string) error {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
	return nil
}

func (r *recordingNotifier) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

// idle keeps the background ticker from firing so tests drive Tick by hand.
var idle = WithTickInterval(time.Hour)

func TestTimerStopsItselfAtZero(t *testing.T) {
	n := &recordingNotifier{}
	timer := NewTimer(idle, WithNotifier(n))
	ctx := context.Background()

	timer.Set(5)
	timer.Start(ctx)
	for i := 0; i < 4; i++ {
		assert.False(t, timer.Tick(ctx))
	}
	assert.True(t, timer.Running())
	assert.True(t, timer.Tick(ctx))

	assert.Equal(t, 0, timer.Remaining())
	assert.False(t, timer.Running())
	assert.Equal(t, TimerFinished, timer.Status())
	assert.Equal(t, []string{"Timer finished!"}, n.messages())

	assert.False(t, timer.Tick(ctx), "a finished timer no longer ticks")
	assert.Equal(t, 0, timer.Remaining())
}

func TestTimerRunsInBackground(t *testing.T) {
	n := &recordingNotifier{}
	timer := NewTimer(WithTickInterval(5*time.Millisecond), WithNotifier(n))
	timer.Set(3)
	timer.Start(context.Background())

	require.Eventually(t, func() bool { return timer.Status() == TimerFinished }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, timer.Remaining())
	assert.Len(t, n.messages(), 1)
}

func TestTimerResetAlwaysRestoresDefault(t *testing.T) {
	ctx := context.Background()
	cases := map[string]func(*Timer){
		"stopped": func(tm *Timer) { tm.Set(42) },
		"running": func(tm *Timer) { tm.Set(42); tm.Start(ctx) },
		"finished": func(tm *Timer) {
			tm.Set(1)
			tm.Start(ctx)
			tm.Tick(ctx)
		},
	}
	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			timer := NewTimer(idle)
			setup(timer)
			timer.Reset()
			assert.Equal(t, DefaultTimerSeconds, timer.Remaining())
			assert.False(t, timer.Running())
			assert.Equal(t, TimerStopped, timer.Status())
		})
	}
}

func TestTimerToggle(t *testing.T) {
	timer := NewTimer(idle)
	ctx := context.Background()

	assert.True(t, timer.Toggle(ctx))
	assert.True(t, timer.Running())
	timer.Start(ctx) // already running, must not start a second ticker
	assert.False(t, timer.Toggle(ctx))
	assert.False(t, timer.Running())
	assert.Equal(t, DefaultTimerSeconds, timer.Remaining())
}

func TestTimerStopKeepsRemaining(t *testing.T) {
	timer := NewTimer(idle)
	ctx := context.Background()
	timer.Set(10)
	timer.Start(ctx)
	timer.Tick(ctx)
	timer.Stop()
	assert.Equal(t, 9, timer.Remaining())
	assert.False(t, timer.Tick(ctx), "stopped timer ignores ticks")
	assert.Equal(t, 9, timer.Remaining())
}

func TestTimerSetWhileRunning(t *testing.T) {
	timer := NewTimer(idle)
	ctx := context.Background()
	timer.Start(ctx)
	timer.Set(120)
	assert.True(t, timer.Running())
	assert.Equal(t, "02:00", timer.Display())
	timer.Stop()
}

func TestTimerSetMinutes(t *testing.T) {
	timer := NewTimer(idle)
	assert.False(t, timer.SetMinutes(0))
	assert.False(t, timer.SetMinutes(-3))
	assert.Equal(t, DefaultTimerSeconds, timer.Remaining())
	assert.True(t, timer.SetMinutes(7))
	assert.Equal(t, 420, timer.Remaining())
}

func TestTimerStepNotice(t *testing.T) {
	n := &recordingNotifier{}
	timer := NewTimer(idle, WithNotifier(n))
	ctx := context.Background()
	timer.SetStep(4)
	timer.Set(1)
	timer.Start(ctx)
	timer.Tick(ctx)
	assert.Equal(t, []string{"Timer for step 4 finished!"}, n.messages())
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "00:00"},
		{5, "00:05"},
		{65, "01:05"},
		{300, "05:00"},
		{3599, "59:59"},
		{6000, "100:00"},
		{-4, "00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatClock(tt.in), "FormatClock(%d)", tt.in)
	}
}

func TestTimerStatusString(t *testing.T) {
	assert.Equal(t, "stopped", TimerStopped.String())
	assert.Equal(t, "running", TimerRunning.String())
	assert.Equal(t, "finished", TimerFinished.String())
	assert.Equal(t, "unknown", TimerStatus(9).String())
}
