package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

type RawKind int

const (
	RawNone RawKind = iota
	RawNumeric
	RawText
)

// RawValue is the question-specific answer payload: a number for some
// questions, a label for others.
type RawValue struct {
	kind RawKind
	num  float64
	text string
}

func NumericRaw(v float64) RawValue {
	return RawValue{kind: RawNumeric, num: v}
}

func TextRaw(s string) RawValue {
	return RawValue{kind: RawText, text: s}
}

func (r RawValue) Kind() RawKind {
	return r.kind
}

func (r RawValue) Number() (float64, bool) {
	return r.num, r.kind == RawNumeric
}

func (r RawValue) Text() (string, bool) {
	return r.text, r.kind == RawText
}

func (r RawValue) String() string {
	switch r.kind {
	case RawNumeric:
		return strconv.FormatFloat(r.num, 'f', -1, 64)
	case RawText:
		return r.text
	default:
		return ""
	}
}

func (r RawValue) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case RawNumeric:
		return json.Marshal(r.num)
	case RawText:
		return json.Marshal(r.text)
	default:
		return []byte("null"), nil
	}
}

func (r *RawValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*r = RawValue{}
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = TextRaw(s)
		return nil
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("raw value must be a number or a string: %w", err)
		}
		*r = NumericRaw(f)
		return nil
	}
}

type SurveyAnswer struct {
	QuestionID string         `json:"questionId"`
	Category   SurveyCategory `json:"category"`
	Value      int            `json:"value"`
	Raw        RawValue       `json:"raw"`
}
