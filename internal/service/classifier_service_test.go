package service

import (
	"fmt"
	"quizify_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifier(t *testing.T) *ClassifierService {
	t.Helper()
	c, err := NewClassifierService()
	require.NoError(t, err)
	n := 0
	c.NewID = func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
	return c
}

func prompts(qs []model.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.Prompt
	}
	return out
}

func TestClassifyStackAndQueueText(t *testing.T) {
	c := newTestClassifier(t)

	qs := c.Classify("A Stack pushes and pops; a QUEUE enqueues and dequeues.")

	require.Len(t, qs, 5)
	assert.Equal(t, []string{
		"Which data structure follows the Last-In-First-Out (LIFO) principle?",
		"What type of data structure is a tree?",
		"Arrays store elements at contiguous memory locations.",
		"A queue follows the Last-In-First-Out principle.",
		"Explain the difference between a stack and a queue data structure.",
	}, prompts(qs))
	assert.Equal(t, []string{"Data Structures"}, c.MatchedTopics("stack and queue"))
}

func TestClassifyWithoutTriggersYieldsFillerOnly(t *testing.T) {
	c := newTestClassifier(t)

	qs := c.Classify("The history of the Roman empire.")
	require.Len(t, qs, 3)
	assert.Equal(t, model.KindTrueFalse, qs[0].Kind())
	assert.Equal(t, model.KindTrueFalse, qs[1].Kind())
	assert.Equal(t, model.KindShortAnswer, qs[2].Kind())
	assert.Equal(t, 3, qs[2].Points)
}

func TestClassifyIsDeterministicAndValid(t *testing.T) {
	c := newTestClassifier(t)
	text := sampleCourseText

	first := c.Classify(text)
	second := c.Classify(text)
	assert.Equal(t, prompts(first), prompts(second))

	// every topic of the sample course matches: 1+2+2+2+2+1+1 topic questions plus 3 fillers
	assert.Len(t, first, 14)

	ids := make(map[string]bool)
	for _, q := range first {
		assert.NoError(t, q.Validate())
		assert.False(t, ids[q.ID], "ids must be unique")
		ids[q.ID] = true
		if mc, ok := q.Body.(model.MultipleChoice); ok {
			assert.True(t, mc.Correct >= 0 && mc.Correct < len(mc.Options))
		}
	}
}

func TestClassifyTemplateAnswers(t *testing.T) {
	c := newTestClassifier(t)
	qs := c.Classify("algorithm")

	require.Len(t, qs, 5)
	assert.Equal(t, model.MultipleChoice{
		Options: []string{"Big O notation", "Small o notation", "Theta notation", "All of the above"},
		Correct: 3,
	}, qs[0].Body)
	assert.Equal(t, 2, qs[0].Points)
	assert.Equal(t, model.TrueFalse{Correct: 1}, qs[3].Body)
}

func TestAnalyzeTopics(t *testing.T) {
	c := newTestClassifier(t)
	assert.Equal(t, []string{"Data Structures", "Database"}, c.AnalyzeTopics("A binary tree index in a database"))
	assert.Empty(t, c.AnalyzeTopics("poetry"))
}
