package model

import (
	"encoding/json"
	"strings"
	"time"
)

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// swagger:model Quiz
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	TimeLimit   int        `json:"timeLimit,omitempty"` // 分钟，0 表示不限时
	Subject     string     `json:"subject,omitempty"`
	Difficulty  Difficulty `json:"difficulty"`
	IsPublished bool       `json:"isPublished"`
}

type quizAlias Quiz

// MarshalJSON emits totalPoints derived from the questions. Any totalPoints
// present on input is ignored.
func (q Quiz) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		quizAlias
		TotalPoints int `json:"totalPoints"`
	}{
		quizAlias:   quizAlias(q),
		TotalPoints: q.TotalPoints(),
	})
}

func (q Quiz) TotalPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

func (q Quiz) TimeLimitSeconds() int {
	if q.TimeLimit <= 0 {
		return 0
	}
	return q.TimeLimit * 60
}

func (q Quiz) QuestionByID(id string) (Question, bool) {
	for _, question := range q.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}

// Score sums the points of auto-graded questions whose recorded answer equals
// the correct index. Missing answers and short-answer questions contribute 0.
func (q Quiz) Score(answers Answers) int {
	score := 0
	for _, question := range q.Questions {
		a, ok := answers[question.ID]
		if !ok {
			continue
		}
		if question.IsCorrect(a) {
			score += question.Points
		}
	}
	return score
}

func (q Quiz) Validate() error {
	if strings.TrimSpace(q.Title) == "" {
		return invalid("title", "title is required")
	}
	if strings.TrimSpace(q.Description) == "" {
		return invalid("description", "description is required")
	}
	if !q.Difficulty.Valid() {
		return invalid("difficulty", "difficulty must be easy, medium or hard")
	}
	if q.TimeLimit < 0 {
		return invalid("timeLimit", "time limit cannot be negative")
	}
	if len(q.Questions) == 0 {
		return invalid("questions", "at least one question is required")
	}

	seen := make(map[string]bool, len(q.Questions))
	for _, question := range q.Questions {
		if err := question.Validate(); err != nil {
			return err
		}
		if question.ID != "" {
			if seen[question.ID] {
				return invalid("questions", "duplicate question id %s", question.ID)
			}
			seen[question.ID] = true
		}
	}
	return nil
}

func (q Quiz) Clone() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		out.Questions[i] = question.Clone()
	}
	return out
}

// QuizDraft is the authoring input for a new quiz; the store assigns ID and CreatedAt.
type QuizDraft struct {
	Title       string
	Description string
	Questions   []Question
	CreatedBy   string
	TimeLimit   int
	Subject     string
	Difficulty  Difficulty
	IsPublished bool
}

func (d QuizDraft) Quiz(id string, createdAt time.Time) Quiz {
	q := Quiz{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Questions:   d.Questions,
		CreatedBy:   d.CreatedBy,
		CreatedAt:   createdAt,
		TimeLimit:   d.TimeLimit,
		Subject:     d.Subject,
		Difficulty:  d.Difficulty,
		IsPublished: d.IsPublished,
	}
	return q.Clone()
}

// QuizPatch holds a partial update; nil fields are left untouched.
type QuizPatch struct {
	Title       *string
	Description *string
	Questions   *[]Question
	TimeLimit   *int
	Subject     *string
	Difficulty  *Difficulty
	IsPublished *bool
}

func (p QuizPatch) Apply(q *Quiz) {
	if p.Title != nil {
		q.Title = *p.Title
	}
	if p.Description != nil {
		q.Description = *p.Description
	}
	if p.Questions != nil {
		qs := make([]Question, len(*p.Questions))
		for i, question := range *p.Questions {
			qs[i] = question.Clone()
		}
		q.Questions = qs
	}
	if p.TimeLimit != nil {
		q.TimeLimit = *p.TimeLimit
	}
	if p.Subject != nil {
		q.Subject = *p.Subject
	}
	if p.Difficulty != nil {
		q.Difficulty = *p.Difficulty
	}
	if p.IsPublished != nil {
		q.IsPublished = *p.IsPublished
	}
}

// StudentQuizView is a quiz as presented to a student before and during an attempt.
type StudentQuizView struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Subject       string            `json:"subject,omitempty"`
	Difficulty    Difficulty        `json:"difficulty"`
	TimeLimit     int               `json:"timeLimit,omitempty"`
	TotalPoints   int               `json:"totalPoints"`
	QuestionCount int               `json:"questionCount"`
	Questions     []StudentQuestion `json:"questions"`
}

func (q Quiz) StudentView() StudentQuizView {
	qs := make([]StudentQuestion, len(q.Questions))
	for i, question := range q.Questions {
		qs[i] = question.StudentView()
	}
	return StudentQuizView{
		ID:            q.ID,
		Title:         q.Title,
		Description:   q.Description,
		Subject:       q.Subject,
		Difficulty:    q.Difficulty,
		TimeLimit:     q.TimeLimit,
		TotalPoints:   q.TotalPoints(),
		QuestionCount: len(q.Questions),
		Questions:     qs,
	}
}
