package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuiz() Quiz {
	return Quiz{
		ID:          "quiz-1",
		Title:       "Data Structures",
		Description: "Basics",
		Difficulty:  Medium,
		Questions: []Question{
			{ID: "mcq", Prompt: "Which is LIFO?", Points: 2, Body: MultipleChoice{Options: []string{"Queue", "Stack"}, Correct: 1}},
			{ID: "tf", Prompt: "Arrays are contiguous.", Points: 1, Body: TrueFalse{Correct: 0}},
		},
	}
}

func TestQuizScoreCountsOnlyExactIndexMatches(t *testing.T) {
	q := sampleQuiz()

	score := q.Score(Answers{"mcq": IndexAnswer(1), "tf": IndexAnswer(1)})
	assert.Equal(t, 2, score)

	assert.Equal(t, 3, q.Score(Answers{"mcq": IndexAnswer(1), "tf": IndexAnswer(0)}))
	assert.Equal(t, 0, q.Score(Answers{}))
	assert.Equal(t, 0, q.Score(Answers{"mcq": TextAnswer("1")}))
}

func TestQuizScoreIgnoresShortAnswers(t *testing.T) {
	q := sampleQuiz()
	q.Questions = append(q.Questions, Question{ID: "sa", Prompt: "Explain", Points: 3, Body: ShortAnswer{Reference: "LIFO vs FIFO"}})

	answers := Answers{"mcq": IndexAnswer(1), "tf": IndexAnswer(0), "sa": TextAnswer("LIFO vs FIFO")}
	assert.Equal(t, 3, q.Score(answers))
	assert.Equal(t, 6, q.TotalPoints())
}

func TestQuizMarshalDerivesTotalPoints(t *testing.T) {
	q := sampleQuiz()
	q.CreatedAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	data, err := json.Marshal(q)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.EqualValues(t, 3, raw["totalPoints"])
	assert.Equal(t, "2024-01-02T03:04:05Z", raw["createdAt"])

	tampered := []byte(`{"id":"x","title":"t","description":"d","difficulty":"easy","totalPoints":99,
		"questions":[{"id":"a","type":"mcq","question":"q","options":["1","2"],"correctAnswer":0,"points":4}]}`)
	var back Quiz
	require.NoError(t, json.Unmarshal(tampered, &back))
	assert.Equal(t, 4, back.TotalPoints())
}

func TestQuizValidate(t *testing.T) {
	q := sampleQuiz()
	assert.NoError(t, q.Validate())

	noTitle := sampleQuiz()
	noTitle.Title = ""
	assert.Error(t, noTitle.Validate())

	noDesc := sampleQuiz()
	noDesc.Description = " "
	assert.Error(t, noDesc.Validate())

	empty := sampleQuiz()
	empty.Questions = nil
	assert.Error(t, empty.Validate())

	badDifficulty := sampleQuiz()
	badDifficulty.Difficulty = "extreme"
	assert.Error(t, badDifficulty.Validate())

	dup := sampleQuiz()
	dup.Questions[1].ID = "mcq"
	assert.Error(t, dup.Validate())
}

func TestQuizPatchApply(t *testing.T) {
	q := sampleQuiz()
	title := "Renamed"
	published := true
	questions := []Question{{ID: "only", Prompt: "p", Points: 5, Body: TrueFalse{Correct: 1}}}

	QuizPatch{Title: &title, IsPublished: &published, Questions: &questions}.Apply(&q)

	assert.Equal(t, "Renamed", q.Title)
	assert.Equal(t, "Basics", q.Description)
	assert.True(t, q.IsPublished)
	assert.Equal(t, 5, q.TotalPoints())
}

func TestStudentViewHidesAnswers(t *testing.T) {
	view := sampleQuiz().StudentView()
	data, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "correctAnswer")
	assert.NotContains(t, string(data), "explanation")
	assert.Equal(t, 3, view.TotalPoints)
	assert.Equal(t, 2, view.QuestionCount)
}
