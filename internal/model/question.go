package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "mcq"
	KindTrueFalse      QuestionKind = "true-false"
	KindShortAnswer    QuestionKind = "short-answer"
)

// QuestionBody is the kind-specific payload of a Question. It is implemented
// only by MultipleChoice, TrueFalse and ShortAnswer.
type QuestionBody interface {
	Kind() QuestionKind
	questionBody()
}

type MultipleChoice struct {
	Options []string
	Correct int
}

type TrueFalse struct {
	Correct int
}

// ShortAnswer carries a reference answer for human review; it is never auto-graded.
type ShortAnswer struct {
	Reference string
}

func (MultipleChoice) Kind() QuestionKind { return KindMultipleChoice }
func (TrueFalse) Kind() QuestionKind      { return KindTrueFalse }
func (ShortAnswer) Kind() QuestionKind    { return KindShortAnswer }

func (MultipleChoice) questionBody() {}
func (TrueFalse) questionBody()      {}
func (ShortAnswer) questionBody()    {}

func TrueFalseOptions() []string {
	return []string{"True", "False"}
}

// swagger:model Question
type Question struct {
	ID          string
	Prompt      string
	Points      int
	Explanation string
	Body        QuestionBody
}

func (q Question) Kind() QuestionKind {
	if q.Body == nil {
		return ""
	}
	return q.Body.Kind()
}

// Options returns the presented choices; nil for short-answer questions.
func (q Question) Options() []string {
	switch b := q.Body.(type) {
	case MultipleChoice:
		return append([]string(nil), b.Options...)
	case TrueFalse:
		return TrueFalseOptions()
	}
	return nil
}

// AutoGraded reports whether correctness is decided by index comparison.
func (q Question) AutoGraded() bool {
	switch q.Body.(type) {
	case MultipleChoice, TrueFalse:
		return true
	}
	return false
}

// IsCorrect compares an answer with the correct option index. Text answers
// never match, and short-answer questions are never correct.
func (q Question) IsCorrect(a Answer) bool {
	idx, ok := a.Index()
	if !ok {
		return false
	}
	switch b := q.Body.(type) {
	case MultipleChoice:
		return idx == b.Correct
	case TrueFalse:
		return idx == b.Correct
	}
	return false
}

// CorrectAnswer renders the expected answer in its wire form: an index for
// auto-graded kinds, the reference text for short answers.
func (q Question) CorrectAnswer() Answer {
	switch b := q.Body.(type) {
	case MultipleChoice:
		return IndexAnswer(b.Correct)
	case TrueFalse:
		return IndexAnswer(b.Correct)
	case ShortAnswer:
		return TextAnswer(b.Reference)
	}
	return Answer{}
}

func (q Question) Validate() error {
	field := "question"
	if q.ID != "" {
		field = "question " + q.ID
	}
	if strings.TrimSpace(q.Prompt) == "" {
		return invalid(field, "prompt is required")
	}
	if q.Points < 1 {
		return invalid(field, "points must be a positive integer")
	}

	switch b := q.Body.(type) {
	case MultipleChoice:
		if len(b.Options) < 2 {
			return invalid(field, "multiple-choice questions need at least 2 options")
		}
		for i, opt := range b.Options {
			if strings.TrimSpace(opt) == "" {
				return invalid(field, "option %d is empty", i+1)
			}
		}
		if b.Correct < 0 || b.Correct >= len(b.Options) {
			return invalid(field, "correct answer %d is out of range", b.Correct)
		}
	case TrueFalse:
		if b.Correct != 0 && b.Correct != 1 {
			return invalid(field, "true-false correct answer must be 0 or 1")
		}
	case ShortAnswer:
	default:
		return invalid(field, "unknown question type")
	}
	return nil
}

func (q Question) Clone() Question {
	if mc, ok := q.Body.(MultipleChoice); ok {
		mc.Options = append([]string(nil), mc.Options...)
		q.Body = mc
	}
	return q
}

type questionJSON struct {
	ID            string          `json:"id"`
	Type          QuestionKind    `json:"type"`
	Question      string          `json:"question"`
	Options       []string        `json:"options,omitempty"`
	CorrectAnswer json.RawMessage `json:"correctAnswer,omitempty"`
	Points        int             `json:"points"`
	Explanation   string          `json:"explanation,omitempty"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	correct, err := json.Marshal(q.CorrectAnswer())
	if err != nil {
		return nil, err
	}
	return json.Marshal(questionJSON{
		ID:            q.ID,
		Type:          q.Kind(),
		Question:      q.Prompt,
		Options:       q.Options(),
		CorrectAnswer: correct,
		Points:        q.Points,
		Explanation:   q.Explanation,
	})
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var raw questionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := Question{
		ID:          raw.ID,
		Prompt:      raw.Question,
		Points:      raw.Points,
		Explanation: raw.Explanation,
	}

	switch raw.Type {
	case KindMultipleChoice, KindTrueFalse:
		correct := 0
		if len(raw.CorrectAnswer) > 0 {
			if err := json.Unmarshal(raw.CorrectAnswer, &correct); err != nil {
				return fmt.Errorf("question %q: correctAnswer must be an option index", raw.ID)
			}
		}
		if raw.Type == KindTrueFalse {
			out.Body = TrueFalse{Correct: correct}
		} else {
			out.Body = MultipleChoice{Options: raw.Options, Correct: correct}
		}
	case KindShortAnswer:
		var ref string
		if len(raw.CorrectAnswer) > 0 && string(raw.CorrectAnswer) != "null" {
			if err := json.Unmarshal(raw.CorrectAnswer, &ref); err != nil {
				return fmt.Errorf("question %q: correctAnswer must be text", raw.ID)
			}
		}
		out.Body = ShortAnswer{Reference: ref}
	default:
		return fmt.Errorf("question %q: unknown type %q", raw.ID, raw.Type)
	}

	*q = out
	return nil
}

// StudentQuestion is a question as shown while taking a quiz, without the
// correct answer or explanation.
type StudentQuestion struct {
	ID       string       `json:"id"`
	Type     QuestionKind `json:"type"`
	Question string       `json:"question"`
	Options  []string     `json:"options,omitempty"`
	Points   int          `json:"points"`
}

func (q Question) StudentView() StudentQuestion {
	return StudentQuestion{
		ID:       q.ID,
		Type:     q.Kind(),
		Question: q.Prompt,
		Options:  q.Options(),
		Points:   q.Points,
	}
}
