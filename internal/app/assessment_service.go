package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rhel-assessment-service/internal/domain"
)

// DefaultQuestionCount is how many questions an attempt asks for.
const DefaultQuestionCount = 10

// SessionRepository abstracts where live sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(sessionID string) *Session
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// QuestionSource produces the question set for one attempt.
type QuestionSource interface {
	Generate(ctx context.Context, req domain.GenerationRequest) ([]domain.Question, error)
}

// ResultArchive persists scored summaries of completed attempts.
type ResultArchive interface {
	Append(ctx context.Context, record domain.ResultRecord) error
	List(ctx context.Context) ([]domain.ResultRecord, error)
	ClearAll(ctx context.Context) error
}

// Options tunes an AssessmentService. Zero values fall back to defaults.
type Options struct {
	QuestionCount int
	Topics        []string
	Recipient     string
	GroupKey      GroupKeyFunc
	Logger        *zap.Logger
	Clock         func() time.Time
	NewID         func() string
}

// AssessmentService contains the candidate-facing use cases.
type AssessmentService struct {
	sessions  SessionRepository
	source    QuestionSource
	archive   ResultArchive
	count     int
	topics    []string
	recipient string
	groupKey  GroupKeyFunc
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

func NewAssessmentService(store SessionRepository, source QuestionSource, archive ResultArchive, opts Options) *AssessmentService {
	svc := &AssessmentService{
		sessions:  store,
		source:    source,
		archive:   archive,
		count:     opts.QuestionCount,
		topics:    opts.Topics,
		recipient: opts.Recipient,
		groupKey:  opts.GroupKey,
		logger:    opts.Logger,
		now:       opts.Clock,
		newID:     opts.NewID,
	}
	if svc.count <= 0 {
		svc.count = DefaultQuestionCount
	}
	if len(svc.topics) == 0 {
		svc.topics = domain.Topics()
	}
	if svc.groupKey == nil {
		svc.groupKey = ModulePrefix
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.newID == nil {
		svc.newID = uuid.NewString
	}
	return svc
}

// Topics returns the manifest question sets are restricted to.
func (s *AssessmentService) Topics() []string {
	out := make([]string, len(s.topics))
	copy(out, s.topics)
	return out
}

// Open starts a fresh idle session.
func (s *AssessmentService) Open(_ context.Context) domain.SessionView {
	session := s.sessions.GetOrCreate(s.newID())
	session.mu.Lock()
	session.groupKey = s.groupKey
	session.mu.Unlock()
	s.logger.Debug("session opened", zap.String("session", session.ID()))
	return session.Snapshot()
}

// Snapshot returns the current view of a session.
func (s *AssessmentService) Snapshot(_ context.Context, sessionID string) (domain.SessionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// StartRegistration moves an idle session to the registration form.
func (s *AssessmentService) StartRegistration(ctx context.Context, sessionID string) (domain.SessionView, error) {
	return s.apply(ctx, sessionID, StartRegistration{})
}

// Register records the candidate and requests questions. It blocks until the
// question source answers; client cancellation does not abort the request.
// On any source failure the session is back in idle and the returned error
// wraps ErrSourceUnavailable or ErrMalformedResponse.
func (s *AssessmentService) Register(ctx context.Context, sessionID, name, email string) (domain.SessionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	if _, _, err := session.dispatch(Register{Name: name, Email: email}, s.now()); err != nil {
		return session.Snapshot(), err
	}

	log := s.logger.With(zap.String("session", sessionID))
	log.Info("generating questions", zap.Int("count", s.count))

	questions, err := s.source.Generate(context.WithoutCancel(ctx), domain.GenerationRequest{
		Count:  s.count,
		Topics: s.Topics(),
	})
	if err == nil {
		err = domain.ValidateQuestionSet(questions)
	}
	if err == nil {
		_, _, err = session.dispatch(QuestionsReady{Questions: questions}, s.now())
	}
	if err != nil {
		err = classifySourceError(err)
		log.Warn("question generation failed", zap.Error(err))
		if _, _, resetErr := session.dispatch(GenerationFailed{}, s.now()); resetErr != nil {
			return session.Snapshot(), resetErr
		}
		return session.Snapshot(), err
	}

	log.Info("assessment started", zap.Int("questions", len(questions)))
	return session.Snapshot(), nil
}

// SelectAnswer records index for the current question.
func (s *AssessmentService) SelectAnswer(ctx context.Context, sessionID string, index int) (domain.SessionView, error) {
	return s.apply(ctx, sessionID, SelectAnswer{Index: index})
}

// Advance moves to the next question; past the last one the attempt is
// completed and its summary archived.
func (s *AssessmentService) Advance(ctx context.Context, sessionID string) (domain.SessionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	before, after, err := session.dispatch(Advance{}, s.now())
	if err != nil {
		return session.Snapshot(), err
	}
	if before.Status == domain.StatusActive && after.Status == domain.StatusCompleted {
		s.archiveAttempt(ctx, sessionID, after)
	}
	return session.Snapshot(), nil
}

// Retreat moves back one question; at the first question it does nothing.
func (s *AssessmentService) Retreat(ctx context.Context, sessionID string) (domain.SessionView, error) {
	return s.apply(ctx, sessionID, Retreat{})
}

// Restart discards a completed attempt and returns the session to idle.
func (s *AssessmentService) Restart(ctx context.Context, sessionID string) (domain.SessionView, error) {
	return s.apply(ctx, sessionID, Restart{})
}

// OpenArchive switches an idle session to the result archive viewer.
func (s *AssessmentService) OpenArchive(ctx context.Context, sessionID string) (domain.SessionView, error) {
	return s.apply(ctx, sessionID, OpenArchive{})
}

// CloseArchive returns from the archive viewer to idle.
func (s *AssessmentService) CloseArchive(ctx context.Context, sessionID string) (domain.SessionView, error) {
	return s.apply(ctx, sessionID, CloseArchive{})
}

// Report returns the scored outcome of a completed attempt.
func (s *AssessmentService) Report(_ context.Context, sessionID string) (domain.Report, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Report{}, domain.ErrSessionNotFound
	}
	st := session.State()
	if st.Status != domain.StatusCompleted {
		return domain.Report{}, domain.ErrNotCompleted
	}
	return Score(st.Questions, st.Answers, s.groupKey), nil
}

// Notification composes the transcript for a completed attempt.
func (s *AssessmentService) Notification(_ context.Context, sessionID string) (domain.Notification, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Notification{}, domain.ErrSessionNotFound
	}
	st := session.State()
	if st.Status != domain.StatusCompleted {
		return domain.Notification{}, domain.ErrNotCompleted
	}
	return ComposeNotification(s.recipient, s.summarize(st)), nil
}

// Subscribe returns a channel that receives a snapshot after every transition.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *AssessmentService) Subscribe(_ context.Context, sessionID string) (<-chan domain.SessionView, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Close drops a session; an unarchived attempt is discarded.
func (s *AssessmentService) Close(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.close()
	s.sessions.Delete(sessionID)
	s.logger.Debug("session closed", zap.String("session", sessionID))
}

// Results lists archived records, most recent first.
func (s *AssessmentService) Results(ctx context.Context) ([]domain.ResultRecord, error) {
	return s.archive.List(ctx)
}

// ClearResults removes every archived record.
func (s *AssessmentService) ClearResults(ctx context.Context) error {
	if err := s.archive.ClearAll(ctx); err != nil {
		return err
	}
	s.logger.Info("result archive cleared")
	return nil
}

func (s *AssessmentService) apply(_ context.Context, sessionID string, ev Event) (domain.SessionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	if _, _, err := session.dispatch(ev, s.now()); err != nil {
		return session.Snapshot(), err
	}
	return session.Snapshot(), nil
}

// archiveAttempt is best effort: a failed write is logged, not surfaced.
func (s *AssessmentService) archiveAttempt(ctx context.Context, sessionID string, st State) {
	summary := s.summarize(st)
	performance := make(map[string]int, len(summary.Groups))
	for _, g := range summary.Groups {
		performance[g.Key] = g.Percentage
	}
	record := domain.ResultRecord{
		ID:                s.newID(),
		Name:              st.CandidateName,
		Email:             st.CandidateEmail,
		Score:             summary.Percentage,
		Date:              s.now(),
		ModulePerformance: performance,
	}
	log := s.logger.With(zap.String("session", sessionID), zap.String("record", record.ID))
	if err := s.archive.Append(context.WithoutCancel(ctx), record); err != nil {
		log.Error("archive result failed", zap.Error(err))
		return
	}
	log.Info("assessment completed", zap.Int("score", record.Score))
}

func (s *AssessmentService) summarize(st State) domain.ResultSummary {
	report := Score(st.Questions, st.Answers, s.groupKey)
	return domain.ResultSummary{
		Name:        st.CandidateName,
		Email:       st.CandidateEmail,
		Percentage:  report.Percentage,
		Correct:     report.Correct,
		Total:       report.Total,
		Groups:      report.Groups,
		CompletedAt: st.EndedAt,
	}
}

// classifySourceError keeps malformed-set errors distinct and folds every
// other failure into ErrSourceUnavailable.
func classifySourceError(err error) error {
	if errors.Is(err, domain.ErrMalformedResponse) || errors.Is(err, domain.ErrSourceUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
}
