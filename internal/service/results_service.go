package service

import (
	"math"
	"quizify_backend/internal/model"
	"quizify_backend/internal/repository"
	"quizify_backend/internal/util"
)

// AveragePercentage is the mean of score/totalPoints*100 over attempts.
// Zero-point attempts count as 0%; an empty set averages to 0.
func AveragePercentage(attempts []model.Attempt) float64 {
	if len(attempts) == 0 {
		return 0
	}
	sum := 0.0
	for _, a := range attempts {
		sum += a.Ratio() * 100
	}
	return sum / float64(len(attempts))
}

// TotalTimeSpent sums attempt durations in seconds.
func TotalTimeSpent(attempts []model.Attempt) int {
	total := 0
	for _, a := range attempts {
		total += a.TimeSpent
	}
	return total
}

// BestAttempt returns the attempt with the highest score ratio. On ties the
// earliest in insertion order wins.
func BestAttempt(attempts []model.Attempt) (model.Attempt, bool) {
	if len(attempts) == 0 {
		return model.Attempt{}, false
	}
	best := attempts[0]
	for _, a := range attempts[1:] {
		if a.Ratio() > best.Ratio() {
			best = a
		}
	}
	return best, true
}

// LatestAttempt returns the attempt completed last. On ties the earliest in
// insertion order wins.
func LatestAttempt(attempts []model.Attempt) (model.Attempt, bool) {
	if len(attempts) == 0 {
		return model.Attempt{}, false
	}
	latest := attempts[0]
	for _, a := range attempts[1:] {
		if a.CompletedAt.After(latest.CompletedAt) {
			latest = a
		}
	}
	return latest, true
}

func roundPercent(p float64) int {
	return int(math.Round(p))
}

type StudentQuizSummary struct {
	QuizID         string        `json:"quizId"`
	QuizTitle      string        `json:"quizTitle"`
	QuizAvailable  bool          `json:"quizAvailable"`
	Attempts       int           `json:"attempts"`
	BestPercentage int           `json:"bestPercentage"`
	BestAttemptID  string        `json:"bestAttemptId"`
	LatestAttempt  model.Attempt `json:"latestAttempt"`
}

type StudentDashboard struct {
	CompletedQuizzes int                  `json:"completedQuizzes"`
	AverageScore     int                  `json:"averageScore"`
	TotalTimeSeconds int                  `json:"totalTimeSeconds"`
	TotalTime        string               `json:"totalTime"`
	AvailableQuizzes int                  `json:"availableQuizzes"`
	Quizzes          []StudentQuizSummary `json:"quizzes"`
}

type QuizStats struct {
	QuizID       string `json:"quizId"`
	Title        string `json:"title"`
	IsPublished  bool   `json:"isPublished"`
	TotalPoints  int    `json:"totalPoints"`
	Attempts     int    `json:"attempts"`
	AverageScore int    `json:"averageScore"`
}

type TeacherDashboard struct {
	TotalQuizzes     int         `json:"totalQuizzes"`
	PublishedQuizzes int         `json:"publishedQuizzes"`
	TotalAttempts    int         `json:"totalAttempts"`
	Quizzes          []QuizStats `json:"quizzes"`
}

type QuestionResult struct {
	QuestionID    string             `json:"questionId"`
	Prompt        string             `json:"question"`
	Type          model.QuestionKind `json:"type"`
	Options       []string           `json:"options,omitempty"`
	Answer        *model.Answer      `json:"answer,omitempty"`
	CorrectAnswer model.Answer       `json:"correctAnswer"`
	AutoGraded    bool               `json:"autoGraded"`
	IsCorrect     bool               `json:"isCorrect"`
	Points        int                `json:"points"`
	Earned        int                `json:"earned"`
	Explanation   string             `json:"explanation,omitempty"`
}

type AttemptDetail struct {
	Attempt       model.Attempt    `json:"attempt"`
	Percentage    int              `json:"percentage"`
	TimeSpent     string           `json:"timeSpent"`
	QuizTitle     string           `json:"quizTitle,omitempty"`
	QuizAvailable bool             `json:"quizAvailable"`
	Questions     []QuestionResult `json:"questions,omitempty"`
}

// ResultsService derives dashboards and result pages from the attempt
// collection. Nothing it computes is stored.
type ResultsService struct {
	Store *repository.QuizStore
}

func NewResultsService(store *repository.QuizStore) *ResultsService {
	return &ResultsService{Store: store}
}

func (s *ResultsService) StudentDashboard(studentID string) *StudentDashboard {
	attempts := s.Store.GetUserAttempts(studentID)

	var order []string
	byQuiz := make(map[string][]model.Attempt)
	for _, a := range attempts {
		if _, seen := byQuiz[a.QuizID]; !seen {
			order = append(order, a.QuizID)
		}
		byQuiz[a.QuizID] = append(byQuiz[a.QuizID], a)
	}

	summaries := make([]StudentQuizSummary, 0, len(order))
	for _, quizID := range order {
		group := byQuiz[quizID]
		best, _ := BestAttempt(group)
		latest, _ := LatestAttempt(group)

		summary := StudentQuizSummary{
			QuizID:         quizID,
			Attempts:       len(group),
			BestPercentage: best.Percentage(),
			BestAttemptID:  best.ID,
			LatestAttempt:  latest,
		}
		// 试卷可能已被删除
		if quiz, ok := s.Store.GetQuizByID(quizID); ok {
			summary.QuizTitle = quiz.Title
			summary.QuizAvailable = true
		}
		summaries = append(summaries, summary)
	}

	total := TotalTimeSpent(attempts)
	return &StudentDashboard{
		CompletedQuizzes: len(attempts),
		AverageScore:     roundPercent(AveragePercentage(attempts)),
		TotalTimeSeconds: total,
		TotalTime:        util.FormatHoursMinutes(total),
		AvailableQuizzes: len(s.Store.ListPublishedQuizzes()),
		Quizzes:          summaries,
	}
}

// QuizStatsFor summarizes the attempts recorded against one quiz.
func (s *ResultsService) QuizStatsFor(quiz model.Quiz) QuizStats {
	attempts := s.Store.GetQuizAttempts(quiz.ID)
	return QuizStats{
		QuizID:       quiz.ID,
		Title:        quiz.Title,
		IsPublished:  quiz.IsPublished,
		TotalPoints:  quiz.TotalPoints(),
		Attempts:     len(attempts),
		AverageScore: roundPercent(AveragePercentage(attempts)),
	}
}

func (s *ResultsService) TeacherDashboard(teacherID string) *TeacherDashboard {
	quizzes := s.Store.ListQuizzesByCreator(teacherID)

	dash := &TeacherDashboard{
		TotalQuizzes: len(quizzes),
		Quizzes:      make([]QuizStats, 0, len(quizzes)),
	}
	for _, quiz := range quizzes {
		if quiz.IsPublished {
			dash.PublishedQuizzes++
		}
		stats := s.QuizStatsFor(quiz)
		dash.TotalAttempts += stats.Attempts
		dash.Quizzes = append(dash.Quizzes, stats)
	}
	return dash
}

// ListAttempts returns the caller's own attempts, newest last.
func (s *ResultsService) ListAttempts(studentID string) []model.Attempt {
	return s.Store.GetUserAttempts(studentID)
}

// AttemptDetail renders one attempt for its student, the quiz creator or an
// admin. When the quiz has been deleted only the stored totals are returned.
func (s *ResultsService) AttemptDetail(viewerID string, role model.UserRole, attemptID string) (*AttemptDetail, error) {
	attempt, ok := s.Store.GetAttemptByID(attemptID)
	if !ok {
		return nil, util.ErrAttemptNotFound
	}
	quiz, quizOK := s.Store.GetQuizByID(attempt.QuizID)

	allowed := attempt.StudentID == viewerID || role == model.Admin ||
		(quizOK && quiz.CreatedBy == viewerID)
	if !allowed {
		return nil, util.ErrAttemptNotFound
	}

	detail := &AttemptDetail{
		Attempt:       *attempt,
		Percentage:    attempt.Percentage(),
		TimeSpent:     util.FormatClock(attempt.TimeSpent),
		QuizAvailable: quizOK,
	}
	if !quizOK {
		return detail, nil
	}

	detail.QuizTitle = quiz.Title
	detail.Questions = make([]QuestionResult, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		res := QuestionResult{
			QuestionID:    q.ID,
			Prompt:        q.Prompt,
			Type:          q.Kind(),
			Options:       q.Options(),
			CorrectAnswer: q.CorrectAnswer(),
			AutoGraded:    q.AutoGraded(),
			Points:        q.Points,
			Explanation:   q.Explanation,
		}
		if a, answered := attempt.Answers[q.ID]; answered {
			res.Answer = &a
			res.IsCorrect = q.IsCorrect(a)
		}
		if res.IsCorrect {
			res.Earned = q.Points
		}
		detail.Questions = append(detail.Questions, res)
	}
	return detail, nil
}
