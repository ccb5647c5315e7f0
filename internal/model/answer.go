package model

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Answer is what a student submitted for one question: either an option index
// (multiple-choice, true-false) or free text (short-answer). The zero value is
// option index 0.
type Answer struct {
	index  int
	text   string
	isText bool
}

func IndexAnswer(i int) Answer {
	return Answer{index: i}
}

func TextAnswer(s string) Answer {
	return Answer{text: s, isText: true}
}

// Index returns the option index, or false when the answer is free text.
func (a Answer) Index() (int, bool) {
	if a.isText {
		return 0, false
	}
	return a.index, true
}

// Text returns the free text, or false when the answer is an option index.
func (a Answer) Text() (string, bool) {
	if !a.isText {
		return "", false
	}
	return a.text, true
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.isText {
		return json.Marshal(a.text)
	}
	return json.Marshal(a.index)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = TextAnswer(s)
		return nil
	}

	var i int
	if err := json.Unmarshal(data, &i); err != nil {
		return errors.New("answer must be an option index or a text value")
	}
	*a = IndexAnswer(i)
	return nil
}

// Answers maps question ids to the recorded answer.
type Answers map[string]Answer

func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
