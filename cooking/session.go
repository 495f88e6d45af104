// Package cooking implements cooking mode: a guided walk through a recipe's
// instructions one step at a time, a countdown timer, and ingredient
// check-off progress.
package cooking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Sentinel errors.
var (
	ErrStepOutOfRange       = errors.New("step out of range")
	ErrIngredientOutOfRange = errors.New("ingredient out of range")
	ErrSessionNotFound      = errors.New("cooking session not found")
)

// StepStatus tracks the state of a single instruction.
type StepStatus int

const (
	StepPending StepStatus = iota
	StepDone
)

// String returns a human-readable step status.
func (s StepStatus) String() string {
	switch s {
	case StepPending:
		return "pending"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

// StepView is what the cooking surface shows for the current step.
type StepView struct {
	Number      int     `json:"number"`
	Total       int     `json:"total"`
	Text        string  `json:"text"`
	Percent     float64 `json:"percent"`
	CanPrevious bool    `json:"can_previous"`
	CanNext     bool    `json:"can_next"`
}

// Progress is ingredient check-off progress.
type Progress struct {
	Checked int     `json:"checked"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// Label renders progress as "checked / total".
func (p Progress) Label() string {
	return fmt.Sprintf("%d / %d", p.Checked, p.Total)
}

// Session is the state of one cooking-mode surface. Steps and ingredients are
// fixed at creation.
type Session struct {
	ID        string
	RecipeID  int64
	StartedAt time.Time

	mu          sync.Mutex
	steps       []string
	current     int
	open        bool
	stepStatus  []StepStatus
	ingredients []string
	checked     []bool

	timer    *Timer
	notices  *NoticeBoard
	lastUsed time.Time
}

// NewSession creates a closed session over the given instructions and
// ingredients. Extra timer options are applied after the defaults.
func NewSession(id string, recipeID int64, steps, ingredients []string, opts ...TimerOption) *Session {
	s := &Session{
		ID:          id,
		RecipeID:    recipeID,
		StartedAt:   time.Now(),
		steps:       append([]string(nil), steps...),
		current:     1,
		stepStatus:  make([]StepStatus, len(steps)),
		ingredients: append([]string(nil), ingredients...),
		checked:     make([]bool, len(ingredients)),
		notices:     &NoticeBoard{},
	}
	s.lastUsed = s.StartedAt
	timerOpts := append([]TimerOption{WithNotifier(s.notices)}, opts...)
	s.timer = NewTimer(timerOpts...)
	return s
}

// Touch records that the session was used at t.
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	s.lastUsed = t
	s.mu.Unlock()
}

// LastUsed returns when the session was last opened or looked up.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Timer returns the session's countdown timer.
func (s *Session) Timer() *Timer {
	return s.timer
}

// Notices returns the session's notice board.
func (s *Session) Notices() *NoticeBoard {
	return s.notices
}

// TotalSteps returns the number of instructions.
func (s *Session) TotalSteps() int {
	return len(s.steps)
}

// Start opens cooking mode at step 1.
func (s *Session) Start() StepView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
	s.current = 1
	return s.view()
}

// Open reports whether cooking mode is showing.
func (s *Session) Open() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Next advances one step. On the last step it changes nothing.
func (s *Session) Next() StepView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current < len(s.steps) {
		s.current++
	}
	return s.view()
}

// Previous goes back one step. On the first step it changes nothing.
func (s *Session) Previous() StepView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current > 1 {
		s.current--
	}
	return s.view()
}

// Current returns the view of the current step.
func (s *Session) Current() StepView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// view must be called with s.mu held.
func (s *Session) view() StepView {
	total := len(s.steps)
	v := StepView{
		Number:      s.current,
		Total:       total,
		CanPrevious: s.current > 1,
		CanNext:     s.current < total,
	}
	if total > 0 {
		v.Text = s.steps[s.current-1]
		v.Percent = float64(s.current) / float64(total) * 100
	}
	return v
}

// MarkStepDone marks the nth instruction (1-based) as completed. Marking a
// completed step again changes nothing.
func (s *Session) MarkStepDone(n int) (StepStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 || n > len(s.steps) {
		return StepPending, fmt.Errorf("mark step %d of %d: %w", n, len(s.steps), ErrStepOutOfRange)
	}
	s.stepStatus[n-1] = StepDone
	return StepDone, nil
}

// StepStatuses returns the status of every instruction in order.
func (s *Session) StepStatuses() []StepStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]StepStatus(nil), s.stepStatus...)
}

// ToggleIngredient sets the checked state of the ith ingredient (0-based)
// and returns the recomputed progress.
func (s *Session) ToggleIngredient(i int, checked bool) (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.checked) {
		return s.progress(), fmt.Errorf("toggle ingredient %d of %d: %w", i, len(s.checked), ErrIngredientOutOfRange)
	}
	s.checked[i] = checked
	return s.progress(), nil
}

// IngredientProgress returns the current check-off progress.
func (s *Session) IngredientProgress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress()
}

// progress must be called with s.mu held.
func (s *Session) progress() Progress {
	p := Progress{Total: len(s.checked)}
	for _, c := range s.checked {
		if c {
			p.Checked++
		}
	}
	if p.Total > 0 {
		p.Percent = float64(p.Checked) / float64(p.Total) * 100
	}
	return p
}

// OpenTimer points the timer at the nth instruction.
func (s *Session) OpenTimer(n int) error {
	if n < 1 || n > len(s.steps) {
		return fmt.Errorf("open timer for step %d of %d: %w", n, len(s.steps), ErrStepOutOfRange)
	}
	s.timer.SetStep(n)
	return nil
}

// Close hides cooking mode, stops the timer and resets navigation.
func (s *Session) Close() {
	s.timer.Stop()
	s.mu.Lock()
	s.open = false
	s.current = 1
	s.mu.Unlock()
}

// Snapshot is a serializable view of a whole session.
type Snapshot struct {
	ID          string   `json:"id"`
	RecipeID    int64    `json:"recipe_id"`
	Open        bool     `json:"open"`
	Step        StepView `json:"step"`
	StepsDone   []bool   `json:"steps_done"`
	Ingredients []bool   `json:"ingredients"`
	Progress    Progress `json:"progress"`
	Timer       struct {
		Remaining int    `json:"remaining"`
		Display   string `json:"display"`
		Status    string `json:"status"`
		Step      int    `json:"step,omitempty"`
	} `json:"timer"`
	Notices []Notice `json:"notices,omitempty"`
}

// Snapshot captures the session. Pending notices are drained into it.
func (s *Session) Snapshot(_ context.Context) Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		ID:          s.ID,
		RecipeID:    s.RecipeID,
		Open:        s.open,
		Step:        s.view(),
		StepsDone:   make([]bool, len(s.stepStatus)),
		Ingredients: append([]bool(nil), s.checked...),
		Progress:    s.progress(),
	}
	for i, st := range s.stepStatus {
		snap.StepsDone[i] = st == StepDone
	}
	s.mu.Unlock()

	remaining := s.timer.Remaining()
	snap.Timer.Remaining = remaining
	snap.Timer.Display = FormatClock(remaining)
	snap.Timer.Status = s.timer.Status().String()
	snap.Timer.Step = s.timer.Step()
	snap.Notices = s.notices.Drain()
	return snap
}
