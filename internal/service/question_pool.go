package service

import (
	"math/rand/v2"
	"quizify_backend/internal/model"
)

// MaxPoolQuestions caps how many generated questions reach the editor.
const MaxPoolQuestions = 12

// QuestionPoolAssembler shuffles classifier output uniformly and keeps the
// first MaxPoolQuestions entries.
type QuestionPoolAssembler struct {
	rng *rand.Rand
}

// NewQuestionPoolAssembler uses rng for shuffling; nil means the global source.
func NewQuestionPoolAssembler(rng *rand.Rand) *QuestionPoolAssembler {
	return &QuestionPoolAssembler{rng: rng}
}

func (a *QuestionPoolAssembler) shuffle(n int, swap func(i, j int)) {
	if a.rng != nil {
		a.rng.Shuffle(n, swap)
		return
	}
	rand.Shuffle(n, swap)
}

// Assemble returns a shuffled copy of candidates truncated to MaxPoolQuestions.
// The input slice is not modified.
func (a *QuestionPoolAssembler) Assemble(candidates []model.Question) []model.Question {
	pool := make([]model.Question, len(candidates))
	copy(pool, candidates)

	a.shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	if len(pool) > MaxPoolQuestions {
		pool = pool[:MaxPoolQuestions]
	}
	return pool
}
