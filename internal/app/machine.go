package app

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"rhel-assessment-service/internal/domain"
)

// State is the full value of one candidate attempt. Transition never mutates
// the State it is given.
type State struct {
	Status         domain.Status
	Questions      []domain.Question
	Current        int
	Answers        map[string]int
	CandidateName  string
	CandidateEmail string
	StartedAt      time.Time
	EndedAt        time.Time
}

// InitialState is the idle state a session starts in and returns to on restart.
func InitialState() State {
	return State{Status: domain.StatusIdle, Answers: map[string]int{}}
}

// Event is an input to the state machine.
type Event interface {
	name() string
}

type (
	// StartRegistration moves an idle session to the registration form.
	StartRegistration struct{}
	// Register submits candidate identity and starts question generation.
	Register struct{ Name, Email string }
	// QuestionsReady delivers a generated question set.
	QuestionsReady struct{ Questions []domain.Question }
	// GenerationFailed reports a question source failure.
	GenerationFailed struct{}
	// SelectAnswer records an option for the current question.
	SelectAnswer struct{ Index int }
	// Advance moves forward, completing the attempt past the last question.
	Advance struct{}
	// Retreat moves back one question.
	Retreat struct{}
	// Restart discards a completed attempt.
	Restart struct{}
	// OpenArchive switches an idle session to the result archive viewer.
	OpenArchive struct{}
	// CloseArchive leaves the archive viewer.
	CloseArchive struct{}
)

func (StartRegistration) name() string { return "start" }
func (Register) name() string          { return "register" }
func (QuestionsReady) name() string    { return "questions ready" }
func (GenerationFailed) name() string  { return "generation failed" }
func (SelectAnswer) name() string      { return "select answer" }
func (Advance) name() string           { return "advance" }
func (Retreat) name() string           { return "retreat" }
func (Restart) name() string           { return "restart" }
func (OpenArchive) name() string       { return "open archive" }
func (CloseArchive) name() string      { return "close archive" }

// Transition applies ev to s at time now. On error the returned state is s.
func Transition(s State, ev Event, now time.Time) (State, error) {
	switch e := ev.(type) {
	case StartRegistration:
		if s.Status != domain.StatusIdle {
			return s, invalid(s, ev)
		}
		s.Status = domain.StatusRegistering
		return s, nil

	case Register:
		if s.Status != domain.StatusRegistering {
			return s, invalid(s, ev)
		}
		if strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.Email) == "" {
			return s, domain.ErrInvalidRegistration
		}
		s.Status = domain.StatusGenerating
		s.CandidateName = e.Name
		s.CandidateEmail = e.Email
		return s, nil

	case QuestionsReady:
		if s.Status != domain.StatusGenerating {
			return s, invalid(s, ev)
		}
		if err := domain.ValidateQuestionSet(e.Questions); err != nil {
			return s, err
		}
		s.Status = domain.StatusActive
		s.Questions = e.Questions
		s.Current = 0
		s.Answers = map[string]int{}
		s.StartedAt = now
		return s, nil

	case GenerationFailed:
		if s.Status != domain.StatusGenerating {
			return s, invalid(s, ev)
		}
		return InitialState(), nil

	case SelectAnswer:
		if s.Status != domain.StatusActive {
			return s, invalid(s, ev)
		}
		q := s.Questions[s.Current]
		if e.Index < 0 || e.Index >= len(q.Options) {
			return s, fmt.Errorf("%w: %d not in [0, %d)", domain.ErrOutOfRange, e.Index, len(q.Options))
		}
		answers := maps.Clone(s.Answers)
		if answers == nil {
			answers = map[string]int{}
		}
		answers[q.ID] = e.Index
		s.Answers = answers
		return s, nil

	case Advance:
		if s.Status != domain.StatusActive {
			return s, invalid(s, ev)
		}
		if s.Current == len(s.Questions)-1 {
			s.Status = domain.StatusCompleted
			s.EndedAt = now
			if s.EndedAt.Before(s.StartedAt) {
				s.EndedAt = s.StartedAt
			}
			return s, nil
		}
		s.Current++
		return s, nil

	case Retreat:
		if s.Status != domain.StatusActive {
			return s, invalid(s, ev)
		}
		if s.Current > 0 {
			s.Current--
		}
		return s, nil

	case Restart:
		if s.Status != domain.StatusCompleted {
			return s, invalid(s, ev)
		}
		return InitialState(), nil

	case OpenArchive:
		if s.Status != domain.StatusIdle {
			return s, invalid(s, ev)
		}
		s.Status = domain.StatusAdminReview
		return s, nil

	case CloseArchive:
		if s.Status != domain.StatusAdminReview {
			return s, invalid(s, ev)
		}
		s.Status = domain.StatusIdle
		return s, nil
	}
	return s, fmt.Errorf("%w: unknown event %T", domain.ErrInvalidTransition, ev)
}

func invalid(s State, ev Event) error {
	return fmt.Errorf("%w: %s while %s", domain.ErrInvalidTransition, ev.name(), s.Status)
}
