package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"quizify_backend/internal/model"
	"quizify_backend/pkg/database"
	"quizify_backend/pkg/logger"
	"quizify_backend/pkg/monitoring"
	"quizify_backend/pkg/tracing"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	QuizzesKey  = "quizzes"
	AttemptsKey = "attempts"
)

// QuizStore keeps quizzes and attempts in memory and mirrors each collection
// to one key of the backing KVStore. Every write persists the whole affected
// collection before the in-memory copy is replaced. Reads never fail; a miss
// is reported as absent.
type QuizStore struct {
	KV    database.KVStore
	Now   func() time.Time
	NewID func() string

	mu       sync.RWMutex
	quizzes  []model.Quiz
	attempts []model.Attempt
}

func NewQuizStore(kv database.KVStore) *QuizStore {
	return &QuizStore{
		KV:    kv,
		Now:   time.Now,
		NewID: model.GenerateUUID,
	}
}

// Load replaces the in-memory collections with what the backend holds. A
// collection that cannot be decoded is logged, removed from the backend and
// starts empty. Backend I/O errors are returned.
func (s *QuizStore) Load(ctx context.Context) error {
	var quizzes []model.Quiz
	if err := s.loadCollection(ctx, QuizzesKey, &quizzes); err != nil {
		return err
	}
	var attempts []model.Attempt
	if err := s.loadCollection(ctx, AttemptsKey, &attempts); err != nil {
		return err
	}

	s.mu.Lock()
	s.quizzes = quizzes
	s.attempts = attempts
	s.mu.Unlock()

	logger.Log.Info("Quiz store loaded",
		zap.Int("quizzes", len(quizzes)),
		zap.Int("attempts", len(attempts)),
	)
	return nil
}

func (s *QuizStore) loadCollection(ctx context.Context, key string, out interface{}) error {
	data, found, err := s.KV.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if !found {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		logger.Log.Warn("Discarding unreadable stored collection",
			zap.String("key", key),
			zap.Error(err),
		)
		monitoring.StoreLoadFailures.WithLabelValues(key).Inc()
		if delErr := s.KV.Delete(ctx, key); delErr != nil {
			logger.Log.Error("Failed to remove unreadable collection", zap.String("key", key), zap.Error(delErr))
		}
		// 丢弃损坏的数据，从空集合开始
		switch v := out.(type) {
		case *[]model.Quiz:
			*v = nil
		case *[]model.Attempt:
			*v = nil
		}
	}
	return nil
}

func (s *QuizStore) persist(ctx context.Context, key string, collection interface{}) (err error) {
	ctx, span := tracing.Start(ctx, "QuizStore.persist", attribute.String("store.key", key))
	defer func() { tracing.End(span, err) }()

	data, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.KV.Set(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// CreateQuiz assigns an id and creation time, appends the quiz and persists.
func (s *QuizStore) CreateQuiz(ctx context.Context, draft model.QuizDraft) (*model.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quiz := draft.Quiz(s.NewID(), s.Now())

	next := make([]model.Quiz, len(s.quizzes), len(s.quizzes)+1)
	copy(next, s.quizzes)
	next = append(next, quiz)

	if err := s.persist(ctx, QuizzesKey, next); err != nil {
		return nil, err
	}
	s.quizzes = next

	out := quiz.Clone()
	return &out, nil
}

// UpdateQuiz merges patch into the quiz with the given id. When no quiz
// matches it does nothing and returns nil, nil.
func (s *QuizStore) UpdateQuiz(ctx context.Context, id string, patch model.QuizPatch) (*model.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.quizIndex(id)
	if idx < 0 {
		return nil, nil
	}

	next := make([]model.Quiz, len(s.quizzes))
	copy(next, s.quizzes)
	updated := next[idx].Clone()
	patch.Apply(&updated)
	next[idx] = updated

	if err := s.persist(ctx, QuizzesKey, next); err != nil {
		return nil, err
	}
	s.quizzes = next

	out := updated.Clone()
	return &out, nil
}

// DeleteQuiz removes the quiz with the given id. Attempts that reference it
// are left untouched.
func (s *QuizStore) DeleteQuiz(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.quizIndex(id)
	if idx < 0 {
		return nil
	}

	next := make([]model.Quiz, 0, len(s.quizzes)-1)
	next = append(next, s.quizzes[:idx]...)
	next = append(next, s.quizzes[idx+1:]...)

	if err := s.persist(ctx, QuizzesKey, next); err != nil {
		return err
	}
	s.quizzes = next
	return nil
}

// SubmitAttempt assigns an id and completion time, appends the attempt and persists.
func (s *QuizStore) SubmitAttempt(ctx context.Context, draft model.AttemptDraft) (*model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt := draft.Attempt(s.NewID(), s.Now())

	next := make([]model.Attempt, len(s.attempts), len(s.attempts)+1)
	copy(next, s.attempts)
	next = append(next, attempt)

	if err := s.persist(ctx, AttemptsKey, next); err != nil {
		return nil, err
	}
	s.attempts = next

	out := attempt.Clone()
	return &out, nil
}

func (s *QuizStore) quizIndex(id string) int {
	for i := range s.quizzes {
		if s.quizzes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *QuizStore) GetQuizByID(id string) (*model.Quiz, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.quizIndex(id)
	if idx < 0 {
		return nil, false
	}
	out := s.quizzes[idx].Clone()
	return &out, true
}

// GetUserAttempts returns the student's attempts in insertion order.
func (s *QuizStore) GetUserAttempts(studentID string) []model.Attempt {
	return s.filterAttempts(func(a model.Attempt) bool { return a.StudentID == studentID })
}

func (s *QuizStore) GetQuizAttempts(quizID string) []model.Attempt {
	return s.filterAttempts(func(a model.Attempt) bool { return a.QuizID == quizID })
}

func (s *QuizStore) ListAttempts() []model.Attempt {
	return s.filterAttempts(func(model.Attempt) bool { return true })
}

func (s *QuizStore) GetAttemptByID(id string) (*model.Attempt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.attempts {
		if a.ID == id {
			out := a.Clone()
			return &out, true
		}
	}
	return nil, false
}

func (s *QuizStore) filterAttempts(keep func(model.Attempt) bool) []model.Attempt {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Attempt, 0)
	for _, a := range s.attempts {
		if keep(a) {
			out = append(out, a.Clone())
		}
	}
	return out
}

func (s *QuizStore) ListQuizzes() []model.Quiz {
	return s.filterQuizzes(func(model.Quiz) bool { return true })
}

func (s *QuizStore) ListQuizzesByCreator(creatorID string) []model.Quiz {
	return s.filterQuizzes(func(q model.Quiz) bool { return q.CreatedBy == creatorID })
}

func (s *QuizStore) ListPublishedQuizzes() []model.Quiz {
	return s.filterQuizzes(func(q model.Quiz) bool { return q.IsPublished })
}

func (s *QuizStore) filterQuizzes(keep func(model.Quiz) bool) []model.Quiz {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Quiz, 0)
	for _, q := range s.quizzes {
		if keep(q) {
			out = append(out, q.Clone())
		}
	}
	return out
}
