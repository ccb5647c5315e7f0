package service

import (
	"context"
	"errors"
	"fmt"
	"quizify_backend/internal/model"
	"quizify_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

func newTestQuizService(t *testing.T) *QuizService {
	t.Helper()
	svc := NewQuizService(newServiceStore(t))
	n := 0
	svc.NewID = func() string {
		n++
		return fmt.Sprintf("qid-%d", n)
	}
	return svc
}

func validReq() QuizReq {
	qs := []model.Question{
		{Prompt: "Pick b", Points: 2, Body: model.MultipleChoice{Options: []string{"a", "b"}, Correct: 1}},
		{Prompt: "Sky is blue", Body: model.TrueFalse{Correct: 0}},
	}
	return QuizReq{
		Title:       strPtr("Week 1"),
		Description: strPtr("Intro"),
		Questions:   &qs,
	}
}

func TestQuizCreateAppliesDefaults(t *testing.T) {
	svc := newTestQuizService(t)

	quiz, err := svc.Create(context.Background(), "teacher-1", validReq())
	require.NoError(t, err)

	assert.Equal(t, model.Medium, quiz.Difficulty)
	assert.Equal(t, DefaultTimeLimit, quiz.TimeLimit)
	assert.False(t, quiz.IsPublished)
	assert.Equal(t, "teacher-1", quiz.CreatedBy)
	assert.Equal(t, "qid-1", quiz.Questions[0].ID)
	assert.Equal(t, 1, quiz.Questions[1].Points)
	assert.Equal(t, 3, quiz.TotalPoints())
}

func TestQuizCreateValidates(t *testing.T) {
	svc := newTestQuizService(t)

	req := validReq()
	req.Title = strPtr("  ")
	_, err := svc.Create(context.Background(), "teacher-1", req)

	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "title", verr.Field)

	req = validReq()
	bad := []model.Question{{Prompt: "x", Points: 1, Body: model.MultipleChoice{Options: []string{"only"}, Correct: 0}}}
	req.Questions = &bad
	_, err = svc.Create(context.Background(), "teacher-1", req)
	assert.True(t, errors.As(err, &verr))
	assert.Empty(t, svc.ListByCreator("teacher-1"))
}

func TestQuizUpdateIsCreatorOnly(t *testing.T) {
	svc := newTestQuizService(t)
	ctx := context.Background()
	quiz, err := svc.Create(ctx, "teacher-1", validReq())
	require.NoError(t, err)

	_, err = svc.Update(ctx, "teacher-2", model.Teacher, quiz.ID, QuizReq{Title: strPtr("Hijack")})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	updated, err := svc.Update(ctx, "teacher-1", model.Teacher, quiz.ID, QuizReq{
		Title:       strPtr("Week 1 (rev)"),
		IsPublished: boolPtr(true),
		TimeLimit:   intPtr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, "Week 1 (rev)", updated.Title)
	assert.Equal(t, "Intro", updated.Description)
	assert.True(t, updated.IsPublished)
	assert.Equal(t, 0, updated.TimeLimit)

	_, err = svc.Update(ctx, "admin", model.Admin, quiz.ID, QuizReq{Subject: strPtr("CS")})
	assert.NoError(t, err)

	_, err = svc.Update(ctx, "teacher-1", model.Teacher, quiz.ID, QuizReq{Description: strPtr("")})
	var verr *model.ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = svc.Update(ctx, "teacher-1", model.Teacher, "missing", QuizReq{})
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestQuizUpdateQuestionsRecomputesTotal(t *testing.T) {
	svc := newTestQuizService(t)
	ctx := context.Background()
	quiz, err := svc.Create(ctx, "teacher-1", validReq())
	require.NoError(t, err)

	qs := []model.Question{{Prompt: "Explain", Points: 5, Body: model.ShortAnswer{Reference: "ref"}}}
	updated, err := svc.Update(ctx, "teacher-1", model.Teacher, quiz.ID, QuizReq{Questions: &qs})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.TotalPoints())
}

func TestQuizDeleteKeepsAttempts(t *testing.T) {
	svc := newTestQuizService(t)
	ctx := context.Background()
	quiz, err := svc.Create(ctx, "teacher-1", validReq())
	require.NoError(t, err)

	_, err = svc.Store.SubmitAttempt(ctx, model.AttemptDraft{QuizID: quiz.ID, StudentID: "s1", TotalPoints: 3})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "teacher-2", model.Teacher, quiz.ID), util.ErrPermissionDenied)
	require.NoError(t, svc.Delete(ctx, "teacher-1", model.Teacher, quiz.ID))

	_, ok := svc.Store.GetQuizByID(quiz.ID)
	assert.False(t, ok)
	assert.Len(t, svc.Store.GetUserAttempts("s1"), 1)
}

func TestQuizStudentViews(t *testing.T) {
	svc := newTestQuizService(t)
	ctx := context.Background()

	req := validReq()
	req.IsPublished = boolPtr(true)
	published, err := svc.Create(ctx, "teacher-1", req)
	require.NoError(t, err)
	draft, err := svc.Create(ctx, "teacher-1", validReq())
	require.NoError(t, err)

	list := svc.ListPublished()
	require.Len(t, list, 1)
	assert.Equal(t, published.ID, list[0].ID)
	assert.Equal(t, 3, list[0].TotalPoints)

	_, err = svc.GetForStudent("student-1", draft.ID)
	assert.ErrorIs(t, err, util.ErrQuizNotPublished)
	view, err := svc.GetForStudent("teacher-1", draft.ID)
	require.NoError(t, err)
	assert.Len(t, view.Questions, 2)

	_, err = svc.Get("student-1", model.Student, published.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}
