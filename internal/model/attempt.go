package model

import (
	"math"
	"time"
)

// swagger:model Attempt
type Attempt struct {
	ID          string    `json:"id"`
	QuizID      string    `json:"quizId"`
	StudentID   string    `json:"studentId"`
	Answers     Answers   `json:"answers"`
	Score       int       `json:"score"`
	TotalPoints int       `json:"totalPoints"`
	CompletedAt time.Time `json:"completedAt"`
	TimeSpent   int       `json:"timeSpent"` // 秒
}

// Ratio is score/totalPoints, treating a zero-point quiz as 0.
func (a Attempt) Ratio() float64 {
	if a.TotalPoints <= 0 {
		return 0
	}
	return float64(a.Score) / float64(a.TotalPoints)
}

func (a Attempt) Percentage() int {
	return int(math.Round(a.Ratio() * 100))
}

func (a Attempt) Clone() Attempt {
	a.Answers = a.Answers.Clone()
	return a
}

// AttemptDraft is a finalized attempt before the store assigns ID and CompletedAt.
type AttemptDraft struct {
	QuizID      string
	StudentID   string
	Answers     Answers
	Score       int
	TotalPoints int
	TimeSpent   int
}

func (d AttemptDraft) Attempt(id string, completedAt time.Time) Attempt {
	return Attempt{
		ID:          id,
		QuizID:      d.QuizID,
		StudentID:   d.StudentID,
		Answers:     d.Answers.Clone(),
		Score:       d.Score,
		TotalPoints: d.TotalPoints,
		CompletedAt: completedAt,
		TimeSpent:   d.TimeSpent,
	}
}
