package service

import (
	"context"
	"quizify_backend/internal/model"
	"quizify_backend/internal/repository"
	"quizify_backend/internal/util"
	"quizify_backend/pkg/logger"
	"quizify_backend/pkg/monitoring"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	SessionIdleTTL      = 24 * time.Hour
	CompletedSessionTTL = time.Hour
)

type quizSession struct {
	id          string
	runner      *AttemptRunner
	lastActive  time.Time
	completedAt time.Time
}

// SessionView is the student-facing state of a quiz-taking session.
type SessionView struct {
	ID        string `json:"id"`
	QuizID    string `json:"quizId"`
	QuizTitle string `json:"quizTitle"`
	RunnerSnapshot
}

// SessionService holds in-progress attempts server side, one AttemptRunner
// per session. Sessions are owned by the user that started them.
type SessionService struct {
	Store  *repository.QuizStore
	Now    func() time.Time
	Ticker TickerFunc
	NewID  func() string

	mu       sync.Mutex
	sessions map[string]*quizSession
}

func NewSessionService(store *repository.QuizStore) *SessionService {
	return &SessionService{
		Store:    store,
		Now:      time.Now,
		NewID:    model.GenerateUUID,
		sessions: make(map[string]*quizSession),
	}
}

// Start opens a session on a published quiz. The creator may also start a
// session on their own unpublished quiz to preview it.
func (s *SessionService) Start(ctx context.Context, userID string, quizID string) (*SessionView, error) {
	quiz, ok := s.Store.GetQuizByID(quizID)
	if !ok {
		return nil, util.ErrQuizNotFound
	}
	if !quiz.IsPublished && quiz.CreatedBy != userID {
		return nil, util.ErrQuizNotPublished
	}

	sess := &quizSession{id: s.NewID(), lastActive: s.Now()}
	sess.runner = NewAttemptRunner(*quiz, userID, s.Store, RunnerOptions{
		Now:    s.Now,
		Ticker: s.Ticker,
		OnComplete: func(attempt *model.Attempt, trigger SubmitTrigger) {
			s.onComplete(sess, attempt, trigger)
		},
	})

	s.mu.Lock()
	s.sessions[sess.id] = sess
	monitoring.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	logger.Log.Info("Quiz session started",
		zap.String("sessionId", sess.id),
		zap.String("quizId", quiz.ID),
		zap.String("userId", userID),
	)
	return s.view(sess), nil
}

func (s *SessionService) onComplete(sess *quizSession, attempt *model.Attempt, trigger SubmitTrigger) {
	monitoring.AttemptsSubmitted.WithLabelValues(string(trigger)).Inc()

	s.mu.Lock()
	sess.completedAt = s.Now()
	s.mu.Unlock()

	logger.Log.Info("Attempt submitted",
		zap.String("sessionId", sess.id),
		zap.String("attemptId", attempt.ID),
		zap.String("trigger", string(trigger)),
		zap.Int("score", attempt.Score),
		zap.Int("totalPoints", attempt.TotalPoints),
	)
}

// lookup finds a session owned by userID and marks it active. Sessions of
// other users are reported as not found.
func (s *SessionService) lookup(userID, sessionID string) (*quizSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.runner.StudentID() != userID {
		return nil, util.ErrSessionNotFound
	}
	sess.lastActive = s.Now()
	return sess, nil
}

func (s *SessionService) view(sess *quizSession) *SessionView {
	quiz := sess.runner.Quiz()
	return &SessionView{
		ID:             sess.id,
		QuizID:         quiz.ID,
		QuizTitle:      quiz.Title,
		RunnerSnapshot: sess.runner.Snapshot(),
	}
}

func (s *SessionService) Get(userID, sessionID string) (*SessionView, error) {
	sess, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// Answer records the answer for one question of the session's quiz.
func (s *SessionService) Answer(userID, sessionID, questionID string, answer model.Answer) (*SessionView, error) {
	sess, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	quiz := sess.runner.Quiz()
	if _, ok := quiz.QuestionByID(questionID); !ok {
		return nil, util.ErrQuestionNotFound
	}
	if err := sess.runner.Answer(questionID, answer); err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

func (s *SessionService) open(userID, sessionID string) (*quizSession, error) {
	sess, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	snap := sess.runner.Snapshot()
	if snap.State != StateInProgress || snap.Discarded {
		return nil, util.ErrSessionClosed
	}
	return sess, nil
}

// Next advances to the following question. The current question must be
// answered first.
func (s *SessionService) Next(userID, sessionID string) (*SessionView, error) {
	sess, err := s.open(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.runner.CurrentAnswered() {
		return nil, util.ErrAnswerRequired
	}
	sess.runner.Advance()
	return s.view(sess), nil
}

func (s *SessionService) Prev(userID, sessionID string) (*SessionView, error) {
	sess, err := s.open(userID, sessionID)
	if err != nil {
		return nil, err
	}
	sess.runner.Retreat()
	return s.view(sess), nil
}

// Jump moves to any question by position, as the overview grid allows.
func (s *SessionService) Jump(userID, sessionID string, index int) (*SessionView, error) {
	sess, err := s.open(userID, sessionID)
	if err != nil {
		return nil, err
	}
	sess.runner.JumpTo(index)
	return s.view(sess), nil
}

// Submit finalizes the session. When a timed submission is already being
// persisted it waits for that one instead of recording a second attempt.
func (s *SessionService) Submit(ctx context.Context, userID, sessionID string) (*model.Attempt, error) {
	sess, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}

	attempt, err := sess.runner.Submit(ctx)
	if err != nil {
		return nil, err
	}
	if attempt != nil {
		return attempt, nil
	}

	select {
	case <-sess.runner.Done():
		return sess.runner.Snapshot().Attempt, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Discard abandons the session. Nothing is recorded.
func (s *SessionService) Discard(userID, sessionID string) error {
	sess, err := s.lookup(userID, sessionID)
	if err != nil {
		return err
	}
	sess.runner.Discard()

	s.mu.Lock()
	delete(s.sessions, sessionID)
	monitoring.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()
	return nil
}

// PurgeStale drops sessions completed more than CompletedSessionTTL ago and
// sessions idle for more than SessionIdleTTL. Idle in-progress sessions are
// discarded without recording an attempt.
func (s *SessionService) PurgeStale() int {
	now := s.Now()

	s.mu.Lock()
	var stale []*quizSession
	for id, sess := range s.sessions {
		completed := !sess.completedAt.IsZero() && now.Sub(sess.completedAt) > CompletedSessionTTL
		idle := now.Sub(sess.lastActive) > SessionIdleTTL
		if completed || idle {
			stale = append(stale, sess)
			delete(s.sessions, id)
		}
	}
	monitoring.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	for _, sess := range stale {
		sess.runner.Discard()
	}
	if len(stale) > 0 {
		logger.Log.Info("Purged stale quiz sessions", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// RunPurger calls PurgeStale every interval until ctx is cancelled.
func (s *SessionService) RunPurger(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.PurgeStale()
		}
	}
}

func (s *SessionService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
