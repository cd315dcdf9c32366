package roster

import (
	"context"
	"sync"
	"time"
)

// Session is one staff member's sequential timeline over the shared engine. All of its view
// operations run under its own lock.
type Session struct {
	mu       sync.Mutex
	actor    Actor
	views    [2]*View
	windows  [2]*Window
	lastSeen time.Time

	checkMu     sync.Mutex
	checkSeq    uint64
	cancelCheck context.CancelFunc
}

func newSession(engine *Engine, actor Actor, now time.Time) *Session {
	return &Session{
		actor:    actor,
		views:    [2]*View{NewView(engine, NotCalled), NewView(engine, Called)},
		windows:  [2]*Window{{}, {}},
		lastSeen: now,
	}
}

// Actor returns the identity the session acts for.
func (s *Session) Actor() Actor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actor
}

// Do runs fn with exclusive access to the view and window of side.
func (s *Session) Do(side Side, fn func(v *View, w *Window) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.views[side], s.windows[side])
}

// BeginCheck cancels the session's in-flight eligibility check, if any, and returns the context
// for a new one. The returned release func must be called once the new check has finished.
func (s *Session) BeginCheck(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	s.checkMu.Lock()
	if s.cancelCheck != nil {
		s.cancelCheck()
	}
	s.checkSeq++
	seq := s.checkSeq
	s.cancelCheck = cancel
	s.checkMu.Unlock()

	return ctx, func() {
		s.checkMu.Lock()
		if s.checkSeq == seq {
			s.cancelCheck = nil
		}
		s.checkMu.Unlock()
		cancel()
	}
}

func (s *Session) touch(actor Actor, now time.Time) {
	s.mu.Lock()
	s.actor = actor
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionRegistry hands out one Session per actor.
type SessionRegistry struct {
	mu       sync.Mutex
	engine   *Engine
	sessions map[string]*Session
	now      func() time.Time
}

func NewSessionRegistry(engine *Engine) *SessionRegistry {
	return &SessionRegistry{
		engine:   engine,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Get returns the session of actor, creating it on first use. The stored identity is refreshed
// so a changed display name is used from the next lookup on.
func (r *SessionRegistry) Get(actor Actor) *Session {
	now := r.now()

	r.mu.Lock()
	s, ok := r.sessions[actor.ID]
	if !ok {
		s = newSession(r.engine, actor, now)
		r.sessions[actor.ID] = s
	}
	r.mu.Unlock()

	if ok {
		s.touch(actor, now)
	}
	return s
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than idle and returns how many were dropped.
func (r *SessionRegistry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}
