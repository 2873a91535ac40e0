package services

import (
	"context"
	"log"
	"sync"

	"vehicle-route-service/internal/domain"
)

// SolverStatus is the externally visible solving state of one plan.
type SolverStatus string

const (
	StatusSolving    SolverStatus = "SOLVING"
	StatusNotSolving SolverStatus = "NOT SOLVING"
)

// PlanChange is a structural change applied to a plan strictly between
// search iterations (never mid-cascade).
type PlanChange interface {
	Apply(*domain.RoutePlan) error
}

// PlanChangeValidator is implemented by changes that can be checked without
// the plan. The session validates at queue time, so bad input is rejected
// to the caller instead of failing later inside the solve loop.
type PlanChangeValidator interface {
	Validate() error
}

// Session owns one plan for the duration of a request: the entity graph,
// its solving state and the queue of pending changes. The plan itself is
// single-threaded; mu serializes the solver's moves against readers, so a
// reader only ever observes recompute fixed points.
type Session struct {
	mu     sync.Mutex
	plan   *domain.RoutePlan
	status SolverStatus

	stopOnce sync.Once
	stop     chan struct{}

	pendingMu sync.Mutex
	pending   []PlanChange
}

func NewSession(plan *domain.RoutePlan) *Session {
	return &Session{
		plan:   plan,
		status: StatusNotSolving,
		stop:   make(chan struct{}),
	}
}

// WithPlan runs fn with exclusive access to the plan.
func (s *Session) WithPlan(fn func(*domain.RoutePlan)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.plan)
}

func (s *Session) Status() SolverStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) setStatus(st SolverStatus) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

// RequestStop asks the solver to terminate at the next fixed point. Safe to
// call multiple times and before solving starts.
func (s *Session) RequestStop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Session) stopRequested() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// QueueChange hands a structural change to the session. While solving, the
// change is queued and drained between solver iterations; otherwise it is
// applied immediately. Changes implementing PlanChangeValidator are checked
// up front either way, so validation failures always reach the caller; only
// errors that need plan state (duplicate ids) surface through the log on
// the queued path.
func (s *Session) QueueChange(ch PlanChange) error {
	if v, ok := ch.(PlanChangeValidator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	if s.Status() == StatusSolving {
		s.pendingMu.Lock()
		s.pending = append(s.pending, ch)
		s.pendingMu.Unlock()

		// The solver may have finished between the status check and the
		// append; once the status reads NOT SOLVING its post-solve drain
		// can no longer be counted on to see this change, so drain here.
		if s.Status() == StatusNotSolving {
			s.drainPending(s.plan)
		}
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return ch.Apply(s.plan)
}

// drainPending applies queued changes. Called by the solver with the plan
// lock NOT held; each change is applied under it.
func (s *Session) drainPending(plan *domain.RoutePlan) {
	s.pendingMu.Lock()
	pending := s.pending
	s.pending = nil
	s.pendingMu.Unlock()

	if len(pending) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range pending {
		if err := ch.Apply(plan); err != nil {
			// A rejected change leaves the plan untouched; nothing is
			// partially committed.
			log.Printf("plan change rejected: %v", err)
		}
	}
}

// Solve runs the search on the session's plan until completion, stop
// request, or ctx cancellation, updating the status around the run.
func (s *Session) Solve(ctx context.Context) domain.Score {
	s.setStatus(StatusSolving)
	defer func() {
		// Changes queued during the final pass missed the loop's drains.
		// Draining after the status flip leaves no window: a change
		// appended while the status still read SOLVING lands here, one
		// appended after is applied by QueueChange itself.
		s.setStatus(StatusNotSolving)
		s.drainPending(s.plan)
	}()

	solver := &Solver{Locker: &s.mu}
	return solver.Solve(ctx, s.plan, SolveControl{
		ShouldStop: s.stopRequested,
		Drain:      s.drainPending,
	})
}

// Registry maps request ids to solving sessions. Each plan's graph is
// exclusively owned by its session; the registry only serializes its own
// map mutations against concurrent pollers.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Put registers (or overwrites) the session for an id.
func (r *Registry) Put(id string, s *Session) {
	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// TerminateEarly requests the session's solver to stop at the next fixed
// point. Returns false for an unknown id.
func (r *Registry) TerminateEarly(id string) bool {
	s, ok := r.Get(id)
	if !ok {
		return false
	}
	s.RequestStop()
	return true
}

// Clear drops every session, stopping any in-flight solves first.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		s.RequestStop()
	}
	r.sessions = make(map[string]*Session)
}
