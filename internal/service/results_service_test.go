package service

import (
	"context"
	"quizify_backend/internal/model"
	"quizify_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attemptOf(id string, score, total int, completed time.Time) model.Attempt {
	return model.Attempt{ID: id, Score: score, TotalPoints: total, CompletedAt: completed}
}

func TestAveragePercentageTreatsZeroTotalAsZero(t *testing.T) {
	base := time.Now()
	attempts := []model.Attempt{
		attemptOf("a", 5, 10, base),
		attemptOf("b", 0, 0, base),
		attemptOf("c", 10, 10, base),
	}
	assert.InDelta(t, 50.0, AveragePercentage(attempts), 0.001)
	assert.Equal(t, 0.0, AveragePercentage(nil))
}

func TestBestAttemptKeepsFirstOnTie(t *testing.T) {
	base := time.Now()
	attempts := []model.Attempt{
		attemptOf("a", 1, 2, base),
		attemptOf("b", 3, 4, base),
		attemptOf("c", 6, 8, base),
		attemptOf("d", 2, 4, base),
	}

	best, ok := BestAttempt(attempts)
	require.True(t, ok)
	assert.Equal(t, "b", best.ID)

	again, _ := BestAttempt(attempts)
	assert.Equal(t, best.ID, again.ID)

	_, ok = BestAttempt(nil)
	assert.False(t, ok)
}

func TestLatestAttemptKeepsFirstOnTie(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	attempts := []model.Attempt{
		attemptOf("a", 0, 1, base),
		attemptOf("b", 0, 1, base.Add(time.Hour)),
		attemptOf("c", 0, 1, base.Add(time.Hour)),
		attemptOf("d", 0, 1, base.Add(time.Minute)),
	}

	latest, ok := LatestAttempt(attempts)
	require.True(t, ok)
	assert.Equal(t, "b", latest.ID)
}

func TestTotalTimeSpentFormatsHoursMinutes(t *testing.T) {
	attempts := []model.Attempt{{TimeSpent: 3000}, {TimeSpent: 1500}}
	assert.Equal(t, 4500, TotalTimeSpent(attempts))
	assert.Equal(t, "1h 15m", util.FormatHoursMinutes(TotalTimeSpent(attempts)))
}

func submitAt(t *testing.T, svc *ResultsService, at time.Time, quizID, student string, score, total, spent int) *model.Attempt {
	t.Helper()
	svc.Store.Now = func() time.Time { return at }
	a, err := svc.Store.SubmitAttempt(context.Background(), model.AttemptDraft{
		QuizID:      quizID,
		StudentID:   student,
		Answers:     model.Answers{"mcq": model.IndexAnswer(1)},
		Score:       score,
		TotalPoints: total,
		TimeSpent:   spent,
	})
	require.NoError(t, err)
	return a
}

func TestStudentDashboard(t *testing.T) {
	store := newServiceStore(t)
	svc := NewResultsService(store)
	quiz := seedQuiz(t, store, "teacher-1", true, 0)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	first := submitAt(t, svc, base, quiz.ID, "student-1", 3, 6, 600)
	submitAt(t, svc, base.Add(time.Hour), quiz.ID, "student-1", 2, 6, 1200)
	submitAt(t, svc, base.Add(2*time.Hour), "deleted-quiz", "student-1", 0, 0, 1800)
	submitAt(t, svc, base, quiz.ID, "student-2", 6, 6, 60)

	dash := svc.StudentDashboard("student-1")
	assert.Equal(t, 3, dash.CompletedQuizzes)
	assert.Equal(t, 28, dash.AverageScore)
	assert.Equal(t, 3600, dash.TotalTimeSeconds)
	assert.Equal(t, "1h 0m", dash.TotalTime)
	assert.Equal(t, 1, dash.AvailableQuizzes)

	require.Len(t, dash.Quizzes, 2)
	assert.Equal(t, quiz.ID, dash.Quizzes[0].QuizID)
	assert.True(t, dash.Quizzes[0].QuizAvailable)
	assert.Equal(t, 2, dash.Quizzes[0].Attempts)
	assert.Equal(t, first.ID, dash.Quizzes[0].BestAttemptID)
	assert.Equal(t, 50, dash.Quizzes[0].BestPercentage)
	assert.Equal(t, base.Add(time.Hour), dash.Quizzes[0].LatestAttempt.CompletedAt)

	assert.False(t, dash.Quizzes[1].QuizAvailable)
	assert.Equal(t, 0, dash.Quizzes[1].BestPercentage)
}

func TestTeacherDashboard(t *testing.T) {
	store := newServiceStore(t)
	svc := NewResultsService(store)
	published := seedQuiz(t, store, "teacher-1", true, 0)
	seedQuiz(t, store, "teacher-1", false, 0)
	seedQuiz(t, store, "teacher-2", true, 0)
	base := time.Now()

	submitAt(t, svc, base, published.ID, "s1", 6, 6, 10)
	submitAt(t, svc, base, published.ID, "s2", 3, 6, 10)

	dash := svc.TeacherDashboard("teacher-1")
	assert.Equal(t, 2, dash.TotalQuizzes)
	assert.Equal(t, 1, dash.PublishedQuizzes)
	assert.Equal(t, 2, dash.TotalAttempts)
	require.Len(t, dash.Quizzes, 2)
	assert.Equal(t, 75, dash.Quizzes[0].AverageScore)
	assert.Equal(t, 6, dash.Quizzes[0].TotalPoints)
	assert.Equal(t, 0, dash.Quizzes[1].Attempts)
}

func TestAttemptDetail(t *testing.T) {
	store := newServiceStore(t)
	svc := NewResultsService(store)
	quiz := seedQuiz(t, store, "teacher-1", true, 0)

	attempt := submitAt(t, svc, time.Now(), quiz.ID, "student-1", 2, 6, 95)

	detail, err := svc.AttemptDetail("student-1", model.Student, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, 33, detail.Percentage)
	assert.Equal(t, "1:35", detail.TimeSpent)
	assert.True(t, detail.QuizAvailable)
	require.Len(t, detail.Questions, 3)
	assert.True(t, detail.Questions[0].IsCorrect)
	assert.Equal(t, 2, detail.Questions[0].Earned)
	assert.Nil(t, detail.Questions[1].Answer)
	assert.False(t, detail.Questions[2].AutoGraded)

	_, err = svc.AttemptDetail("teacher-1", model.Teacher, attempt.ID)
	assert.NoError(t, err)
	_, err = svc.AttemptDetail("admin", model.Admin, attempt.ID)
	assert.NoError(t, err)
	_, err = svc.AttemptDetail("student-2", model.Student, attempt.ID)
	assert.ErrorIs(t, err, util.ErrAttemptNotFound)

	require.NoError(t, store.DeleteQuiz(context.Background(), quiz.ID))
	detail, err = svc.AttemptDetail("student-1", model.Student, attempt.ID)
	require.NoError(t, err)
	assert.False(t, detail.QuizAvailable)
	assert.Empty(t, detail.Questions)
	assert.Equal(t, 2, detail.Attempt.Score)
}
