package service

import (
	_ "embed"
	"fmt"
	"quizify_backend/internal/model"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed classifier_topics.yaml
var classifierTopicsYAML []byte

type questionTemplate struct {
	Type        model.QuestionKind `yaml:"type"`
	Question    string             `yaml:"question"`
	Options     []string           `yaml:"options"`
	Correct     int                `yaml:"correct"`
	Reference   string             `yaml:"reference"`
	Points      int                `yaml:"points"`
	Explanation string             `yaml:"explanation"`
}

type classifierTopic struct {
	Name      string             `yaml:"name"`
	Triggers  []string           `yaml:"triggers"`
	Questions []questionTemplate `yaml:"questions"`
}

type subjectKeywords struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type classifierTable struct {
	Topics   []classifierTopic  `yaml:"topics"`
	Filler   []questionTemplate `yaml:"filler"`
	Subjects []subjectKeywords  `yaml:"subjects"`
}

func (t questionTemplate) build(id string) model.Question {
	q := model.Question{
		ID:          id,
		Prompt:      t.Question,
		Points:      t.Points,
		Explanation: t.Explanation,
	}
	switch t.Type {
	case model.KindMultipleChoice:
		q.Body = model.MultipleChoice{Options: append([]string(nil), t.Options...), Correct: t.Correct}
	case model.KindTrueFalse:
		q.Body = model.TrueFalse{Correct: t.Correct}
	case model.KindShortAnswer:
		q.Body = model.ShortAnswer{Reference: t.Reference}
	}
	return q
}

// ClassifierService gates a fixed table of question templates on keywords
// found in extracted document text. It does not generate questions; the text
// only decides which templates are included.
type ClassifierService struct {
	NewID func() string

	table classifierTable
}

func NewClassifierService() (*ClassifierService, error) {
	var table classifierTable
	if err := yaml.Unmarshal(classifierTopicsYAML, &table); err != nil {
		return nil, fmt.Errorf("parse classifier topics: %w", err)
	}

	for _, topic := range table.Topics {
		if len(topic.Triggers) == 0 {
			return nil, fmt.Errorf("topic %q has no triggers", topic.Name)
		}
		for _, tpl := range topic.Questions {
			if err := tpl.build("template").Validate(); err != nil {
				return nil, fmt.Errorf("topic %q: %w", topic.Name, err)
			}
		}
	}
	for _, tpl := range table.Filler {
		if err := tpl.build("template").Validate(); err != nil {
			return nil, fmt.Errorf("filler: %w", err)
		}
	}

	return &ClassifierService{NewID: model.GenerateUUID, table: table}, nil
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// Classify returns, in table order, the questions of every topic whose
// trigger appears in text, followed by the filler questions. Each call builds
// fresh questions with new ids.
func (s *ClassifierService) Classify(text string) []model.Question {
	lower := strings.ToLower(text)

	var out []model.Question
	for _, topic := range s.table.Topics {
		if !containsAny(lower, topic.Triggers) {
			continue
		}
		for _, tpl := range topic.Questions {
			out = append(out, tpl.build(s.NewID()))
		}
	}
	for _, tpl := range s.table.Filler {
		out = append(out, tpl.build(s.NewID()))
	}
	return out
}

// MatchedTopics lists the table topics that Classify would include for text.
func (s *ClassifierService) MatchedTopics(text string) []string {
	lower := strings.ToLower(text)

	out := make([]string, 0)
	for _, topic := range s.table.Topics {
		if containsAny(lower, topic.Triggers) {
			out = append(out, topic.Name)
		}
	}
	return out
}

// AnalyzeTopics tags text with broad subject areas using a wider keyword list
// than the question table. It does not affect which questions are produced.
func (s *ClassifierService) AnalyzeTopics(text string) []string {
	lower := strings.ToLower(text)

	out := make([]string, 0)
	for _, subject := range s.table.Subjects {
		if containsAny(lower, subject.Keywords) {
			out = append(out, subject.Name)
		}
	}
	return out
}
