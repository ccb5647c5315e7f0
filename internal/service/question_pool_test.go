package service

import (
	"fmt"
	"math/rand/v2"
	"quizify_backend/internal/model"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func numbered(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{ID: fmt.Sprintf("q%02d", i), Prompt: "p", Points: 1, Body: model.TrueFalse{}}
	}
	return qs
}

func ids(qs []model.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func TestAssembleKeepsAllWhenUnderCap(t *testing.T) {
	a := NewQuestionPoolAssembler(rand.New(rand.NewPCG(1, 2)))
	in := numbered(5)

	out := a.Assemble(in)

	assert.Len(t, out, 5)
	got := ids(out)
	sort.Strings(got)
	assert.Equal(t, ids(in), got, "output must be a permutation of the input")
}

func TestAssembleCapsAtTwelve(t *testing.T) {
	a := NewQuestionPoolAssembler(nil)
	in := numbered(20)
	before := ids(in)

	out := a.Assemble(in)

	assert.Len(t, out, MaxPoolQuestions)
	assert.Equal(t, before, ids(in), "input must not be reordered")

	seen := make(map[string]bool)
	for _, q := range out {
		assert.False(t, seen[q.ID])
		seen[q.ID] = true
	}
}

func TestAssembleIsReproducibleWithSeed(t *testing.T) {
	in := numbered(14)
	first := NewQuestionPoolAssembler(rand.New(rand.NewPCG(7, 7))).Assemble(in)
	second := NewQuestionPoolAssembler(rand.New(rand.NewPCG(7, 7))).Assemble(in)
	assert.Equal(t, ids(first), ids(second))
}

func TestAssembleShufflesEveryPosition(t *testing.T) {
	a := NewQuestionPoolAssembler(rand.New(rand.NewPCG(42, 1)))
	in := numbered(4)

	firstSeen := make(map[string]int)
	for i := 0; i < 2000; i++ {
		firstSeen[a.Assemble(in)[0].ID]++
	}

	// each of the 4 questions should lead roughly a quarter of the time
	for _, id := range ids(in) {
		assert.InDelta(t, 500, firstSeen[id], 120, "question %s", id)
	}
}

func TestAssembleEmpty(t *testing.T) {
	assert.Empty(t, NewQuestionPoolAssembler(nil).Assemble(nil))
}
