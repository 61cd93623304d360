package app

import (
	"sync"
	"time"

	"rhel-assessment-service/internal/domain"
)

// Session owns the single mutable state cell of one attempt and fans out
// snapshots to subscribers after every accepted transition.
type Session struct {
	id          string
	createdAt   time.Time
	groupKey    GroupKeyFunc
	mu          sync.RWMutex
	state       State
	closed      bool
	subscribers map[chan domain.SessionView]struct{}
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id string) *Session {
	return newSession(id, time.Now())
}

func newSession(id string, createdAt time.Time) *Session {
	return &Session{
		id:          id,
		createdAt:   createdAt,
		groupKey:    ModulePrefix,
		state:       InitialState(),
		subscribers: make(map[chan domain.SessionView]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// CreatedAt returns when the session was opened.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Snapshot returns the client-facing view of the current state.
func (s *Session) Snapshot() domain.SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewLocked()
}

// dispatch applies ev and broadcasts the new view. It returns the state
// before and after so callers can react to specific edges.
func (s *Session) dispatch(ev Event, now time.Time) (before, after State, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before = s.state
	next, err := Transition(s.state, ev, now)
	if err != nil {
		return before, before, err
	}
	s.state = next
	s.broadcastLocked()
	return before, next, nil
}

func (s *Session) subscribe() (<-chan domain.SessionView, func()) {
	ch := make(chan domain.SessionView, 8)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	ch <- s.viewLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// close ends every subscription; later subscribers get a closed channel.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) broadcastLocked() {
	view := s.viewLocked()
	for ch := range s.subscribers {
		select {
		case ch <- view:
		default:
			// Drop the oldest snapshot so a slow reader never blocks a transition.
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
}

func (s *Session) viewLocked() domain.SessionView {
	st := s.state
	view := domain.SessionView{
		SessionID:      s.id,
		Status:         st.Status,
		CandidateName:  st.CandidateName,
		CandidateEmail: st.CandidateEmail,
		CurrentIndex:   st.Current,
		Total:          len(st.Questions),
		Answered:       len(st.Answers),
	}
	if !st.StartedAt.IsZero() {
		started := st.StartedAt
		view.StartedAt = &started
	}
	if !st.EndedAt.IsZero() {
		ended := st.EndedAt
		view.EndedAt = &ended
	}

	switch st.Status {
	case domain.StatusActive:
		q := st.Questions[st.Current]
		qv := q.View()
		view.Question = &qv
		if selected, ok := st.Answers[q.ID]; ok {
			view.Selected = &selected
		}
	case domain.StatusCompleted:
		report := Score(st.Questions, st.Answers, s.groupKey)
		tier := domain.TierFor(report.Percentage)
		view.Report = &report
		view.Tier = &tier
		view.Review = Review(st.Questions, st.Answers)
	}
	return view
}
