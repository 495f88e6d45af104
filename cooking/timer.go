package cooking

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultTimerSeconds is the duration a timer is reset to.
const DefaultTimerSeconds = 300

// Presets are the quick-set durations offered next to the timer, in seconds.
var Presets = []int{60, 180, 300, 600, 900}

// TimerStatus represents the state of a timer.
type TimerStatus int

const (
	TimerStopped TimerStatus = iota
	TimerRunning
	TimerFinished
)

// String returns a human-readable timer status.
func (s TimerStatus) String() string {
	switch s {
	case TimerStopped:
		return "stopped"
	case TimerRunning:
		return "running"
	case TimerFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// TimerOption configures a Timer.
type TimerOption func(*Timer)

// WithTickInterval sets how long one timer second lasts. Tests shorten it.
func WithTickInterval(d time.Duration) TimerOption {
	return func(t *Timer) {
		t.interval = d
	}
}

// WithNotifier sets who is told when the countdown reaches zero.
func WithNotifier(n Notifier) TimerOption {
	return func(t *Timer) {
		t.notifier = n
	}
}

// Timer is a countdown in whole seconds. At most one background ticker runs
// per Timer; Stop and Reset cancel it and wait for it to exit.
type Timer struct {
	mu        sync.Mutex
	remaining int
	status    TimerStatus
	step      int
	gen       int
	cancel    context.CancelFunc
	done      chan struct{}

	interval time.Duration
	notifier Notifier
}

// NewTimer creates a stopped timer set to DefaultTimerSeconds.
func NewTimer(opts ...TimerOption) *Timer {
	t := &Timer{
		remaining: DefaultTimerSeconds,
		interval:  time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Remaining returns the seconds left.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Running reports whether the countdown is active.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status == TimerRunning
}

// Status returns the current timer status.
func (t *Timer) Status() TimerStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Step returns the instruction step the timer was opened for, 0 if none.
func (t *Timer) Step() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.step
}

// SetStep labels the timer with the instruction step it belongs to.
func (t *Timer) SetStep(n int) {
	t.mu.Lock()
	t.step = n
	t.mu.Unlock()
}

// Display formats the remaining time as MM:SS.
func (t *Timer) Display() string {
	return FormatClock(t.Remaining())
}

// FormatClock formats seconds as zero padded MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Toggle starts a stopped timer or stops a running one and reports whether
// it is running afterwards.
func (t *Timer) Toggle(ctx context.Context) bool {
	if t.Running() {
		t.Stop()
		return false
	}
	t.Start(ctx)
	return true
}

// Start begins the countdown. It is a no-op when already running.
func (t *Timer) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status == TimerRunning {
		return
	}
	t.gen++
	childCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	t.status = TimerRunning
	go t.loop(childCtx, t.gen, t.done)
}

// Stop pauses the countdown, keeping the remaining time.
func (t *Timer) Stop() {
	t.mu.Lock()
	cancel, done := t.halt()
	t.mu.Unlock()
	wait(cancel, done)
}

// Reset stops the countdown and restores DefaultTimerSeconds.
func (t *Timer) Reset() {
	t.mu.Lock()
	cancel, done := t.halt()
	t.remaining = DefaultTimerSeconds
	t.status = TimerStopped
	t.mu.Unlock()
	wait(cancel, done)
}

// Set changes the remaining time without touching the running state.
func (t *Timer) Set(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	t.mu.Lock()
	t.remaining = seconds
	if t.status == TimerFinished {
		t.status = TimerStopped
	}
	t.mu.Unlock()
}

// SetMinutes sets a custom duration. Non-positive values are ignored.
func (t *Timer) SetMinutes(minutes int) bool {
	if minutes <= 0 {
		return false
	}
	t.Set(minutes * 60)
	return true
}

// Tick advances a running timer by one second. The tick that reaches zero
// stops the timer and sends the completion notice. It reports whether the
// timer finished on this tick.
func (t *Timer) Tick(ctx context.Context) bool {
	t.mu.Lock()
	gen := t.gen
	t.mu.Unlock()
	return t.tick(ctx, gen)
}

func (t *Timer) tick(ctx context.Context, gen int) bool {
	t.mu.Lock()
	if t.status != TimerRunning || gen != t.gen {
		t.mu.Unlock()
		return false
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining > 0 {
		t.mu.Unlock()
		return false
	}
	// Finishing from inside the loop must not wait on the loop itself.
	if t.cancel != nil {
		t.cancel()
	}
	t.cancel, t.done = nil, nil
	t.status = TimerFinished
	step := t.step
	n := t.notifier
	t.mu.Unlock()

	if n != nil {
		msg := "Timer finished!"
		if step > 0 {
			msg = fmt.Sprintf("Timer for step %d finished!", step)
		}
		_ = n.Notify(ctx, msg)
	}
	return true
}

func (t *Timer) loop(ctx context.Context, gen int, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if t.tick(context.WithoutCancel(ctx), gen) {
				return
			}
		}
	}
}

// halt must be called with t.mu held.
func (t *Timer) halt() (context.CancelFunc, chan struct{}) {
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	if t.status == TimerRunning {
		t.status = TimerStopped
	}
	t.gen++
	return cancel, done
}

func wait(cancel context.CancelFunc, done chan struct{}) {
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}
