package cooking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger is the subset of the echo logger the registry writes to.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// Registry holds the cooking sessions of every browser, one per recipe.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	log      Logger
	opts     []TimerOption

	ctx      context.Context
	cancel   context.CancelFunc
	sweepers sync.WaitGroup
}

// NewRegistry creates an empty registry. Timer options apply to every
// session it opens.
func NewRegistry(log Logger, opts ...TimerOption) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		sessions: make(map[string]*Session),
		log:      log,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Context is the lifetime of the registry. Timers are started under it so
// they outlive the request that started them.
func (r *Registry) Context() context.Context {
	return r.ctx
}

// NewBrowserID returns a fresh opaque browser identifier.
func NewBrowserID() string {
	return uuid.NewString()
}

func key(browserID string, recipeID int64) string {
	return fmt.Sprintf("%s/%d", browserID, recipeID)
}

// Open starts a new session for browserID on recipeID, closing any previous
// one so its timer cannot keep running.
func (r *Registry) Open(browserID string, recipeID int64, steps, ingredients []string) *Session {
	k := key(browserID, recipeID)
	s := NewSession(uuid.NewString(), recipeID, steps, ingredients, r.opts...)

	r.mu.Lock()
	prev := r.sessions[k]
	r.sessions[k] = s
	r.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	if r.log != nil {
		r.log.Infof("cooking session %s opened for recipe %d (%d steps)", s.ID, recipeID, len(steps))
	}
	return s
}

// Get returns the session of browserID for recipeID.
func (r *Registry) Get(browserID string, recipeID int64) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key(browserID, recipeID)]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.Touch(time.Now())
	return s, nil
}

// GetOrOpen returns the existing session or opens one.
func (r *Registry) GetOrOpen(browserID string, recipeID int64, steps, ingredients []string) *Session {
	if s, err := r.Get(browserID, recipeID); err == nil {
		return s
	}
	return r.Open(browserID, recipeID, steps, ingredients)
}

// Close tears down a session and stops its timer.
func (r *Registry) Close(browserID string, recipeID int64) {
	k := key(browserID, recipeID)
	r.mu.Lock()
	s := r.sessions[k]
	delete(r.sessions, k)
	r.mu.Unlock()
	if s == nil {
		return
	}
	s.Close()
	if r.log != nil {
		r.log.Infof("cooking session %s closed", s.ID)
	}
}

// CloseRecipe tears down every session on a recipe, used when it is deleted.
func (r *Registry) CloseRecipe(recipeID int64) {
	r.mu.Lock()
	var closing []*Session
	for k, s := range r.sessions {
		if s.RecipeID == recipeID {
			closing = append(closing, s)
			delete(r.sessions, k)
		}
	}
	r.mu.Unlock()
	for _, s := range closing {
		s.Close()
	}
}

// ExpireIdle closes sessions that have not been used for ttl, checking in
// the background until CloseAll. A non-positive ttl disables expiry.
func (r *Registry) ExpireIdle(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	r.sweepers.Add(1)
	go func() {
		defer r.sweepers.Done()
		ticker := time.NewTicker(max(ttl/4, time.Millisecond))
		defer ticker.Stop()
		for {
			select {
			case <-r.ctx.Done():
				return
			case now := <-ticker.C:
				r.Sweep(now, ttl)
			}
		}
	}()
}

// Sweep closes every session idle for at least ttl at now and returns how
// many it closed. Sessions with a running timer are kept.
func (r *Registry) Sweep(now time.Time, ttl time.Duration) int {
	r.mu.Lock()
	var stale []*Session
	for k, s := range r.sessions {
		if s.Timer().Running() || now.Sub(s.LastUsed()) < ttl {
			continue
		}
		stale = append(stale, s)
		delete(r.sessions, k)
	}
	r.mu.Unlock()
	for _, s := range stale {
		s.Close()
	}
	if r.log != nil && len(stale) > 0 {
		r.log.Infof("expired %d idle cooking sessions", len(stale))
	}
	return len(stale)
}

// CloseAll stops every session, ends the registry context and waits for
// the idle sweep to exit.
func (r *Registry) CloseAll() {
	defer r.sweepers.Wait()
	defer r.cancel()
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
	if r.log != nil && len(all) > 0 {
		r.log.Warnf("closed %d cooking sessions on shutdown", len(all))
	}
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
