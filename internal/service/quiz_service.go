package service

import (
	"context"
	"quizify_backend/internal/model"
	"quizify_backend/internal/repository"
	"quizify_backend/internal/util"
	"quizify_backend/pkg/logger"
	"quizify_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultTimeLimit  = 30
	DefaultDifficulty = model.Medium
)

type QuizService struct {
	Store *repository.QuizStore
	NewID func() string
}

func NewQuizService(store *repository.QuizStore) *QuizService {
	return &QuizService{Store: store, NewID: model.GenerateUUID}
}

// QuizReq is the authoring payload for create and update. On update nil
// fields are left unchanged.
type QuizReq struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Questions   *[]model.Question `json:"questions"`
	TimeLimit   *int              `json:"timeLimit"`
	Subject     *string           `json:"subject"`
	Difficulty  *model.Difficulty `json:"difficulty"`
	IsPublished *bool             `json:"isPublished"`
}

// prepareQuestions copies qs, giving every question without an id a fresh
// one and a default of one point.
func (s *QuizService) prepareQuestions(qs []model.Question) []model.Question {
	out := make([]model.Question, len(qs))
	for i, q := range qs {
		q = q.Clone()
		if q.ID == "" {
			q.ID = s.NewID()
		}
		if q.Points == 0 {
			q.Points = 1
		}
		out[i] = q
	}
	return out
}

func (s *QuizService) Create(ctx context.Context, creatorID string, req QuizReq) (*model.Quiz, error) {
	draft := model.QuizDraft{
		CreatedBy:  creatorID,
		TimeLimit:  DefaultTimeLimit,
		Difficulty: DefaultDifficulty,
	}
	if req.Title != nil {
		draft.Title = *req.Title
	}
	if req.Description != nil {
		draft.Description = *req.Description
	}
	if req.Questions != nil {
		draft.Questions = s.prepareQuestions(*req.Questions)
	}
	if req.TimeLimit != nil {
		draft.TimeLimit = *req.TimeLimit
	}
	if req.Subject != nil {
		draft.Subject = *req.Subject
	}
	if req.Difficulty != nil {
		draft.Difficulty = *req.Difficulty
	}
	if req.IsPublished != nil {
		draft.IsPublished = *req.IsPublished
	}

	if err := draft.Quiz("", time.Time{}).Validate(); err != nil {
		return nil, err
	}

	quiz, err := s.Store.CreateQuiz(ctx, draft)
	if err != nil {
		return nil, err
	}

	monitoring.QuizzesCreated.Inc()
	logger.Log.Info("Quiz created",
		zap.String("quizId", quiz.ID),
		zap.String("createdBy", creatorID),
		zap.Int("questions", len(quiz.Questions)),
		zap.Bool("published", quiz.IsPublished),
	)
	return quiz, nil
}

// owned returns the quiz when userID created it or role is admin.
func (s *QuizService) owned(userID string, role model.UserRole, quizID string) (*model.Quiz, error) {
	quiz, ok := s.Store.GetQuizByID(quizID)
	if !ok {
		return nil, util.ErrQuizNotFound
	}
	if quiz.CreatedBy != userID && role != model.Admin {
		return nil, util.ErrPermissionDenied
	}
	return quiz, nil
}

func (s *QuizService) Update(ctx context.Context, userID string, role model.UserRole, quizID string, req QuizReq) (*model.Quiz, error) {
	current, err := s.owned(userID, role, quizID)
	if err != nil {
		return nil, err
	}

	patch := model.QuizPatch{
		Title:       req.Title,
		Description: req.Description,
		TimeLimit:   req.TimeLimit,
		Subject:     req.Subject,
		Difficulty:  req.Difficulty,
		IsPublished: req.IsPublished,
	}
	if req.Questions != nil {
		qs := s.prepareQuestions(*req.Questions)
		patch.Questions = &qs
	}

	preview := current.Clone()
	patch.Apply(&preview)
	if err := preview.Validate(); err != nil {
		return nil, err
	}

	quiz, err := s.Store.UpdateQuiz(ctx, quizID, patch)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, util.ErrQuizNotFound
	}
	return quiz, nil
}

// Delete removes the quiz. Attempts recorded against it are kept.
func (s *QuizService) Delete(ctx context.Context, userID string, role model.UserRole, quizID string) error {
	if _, err := s.owned(userID, role, quizID); err != nil {
		return err
	}
	if err := s.Store.DeleteQuiz(ctx, quizID); err != nil {
		return err
	}
	logger.Log.Info("Quiz deleted", zap.String("quizId", quizID), zap.String("by", userID))
	return nil
}

// Get returns the full quiz, answers included, to its creator or an admin.
func (s *QuizService) Get(userID string, role model.UserRole, quizID string) (*model.Quiz, error) {
	return s.owned(userID, role, quizID)
}

func (s *QuizService) ListByCreator(creatorID string) []model.Quiz {
	return s.Store.ListQuizzesByCreator(creatorID)
}

func (s *QuizService) ListPublished() []model.StudentQuizView {
	quizzes := s.Store.ListPublishedQuizzes()
	out := make([]model.StudentQuizView, len(quizzes))
	for i, q := range quizzes {
		out[i] = q.StudentView()
	}
	return out
}

// GetForStudent returns the answer-free view of a published quiz. The
// creator may also view an unpublished one.
func (s *QuizService) GetForStudent(userID, quizID string) (*model.StudentQuizView, error) {
	quiz, ok := s.Store.GetQuizByID(quizID)
	if !ok {
		return nil, util.ErrQuizNotFound
	}
	if !quiz.IsPublished && quiz.CreatedBy != userID {
		return nil, util.ErrQuizNotPublished
	}
	view := quiz.StudentView()
	return &view, nil
}
