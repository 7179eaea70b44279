package domain

import (
	"encoding/json"
	"fmt"
)

// Option is one selectable choice in choice-based variants.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// MatchPair is one left/right pairing in a matching task. RightID names
// the correct partner for LeftID.
type MatchPair struct {
	LeftID    string `json:"left_id"`
	LeftText  string `json:"left_text"`
	RightID   string `json:"right_id"`
	RightText string `json:"right_text"`
}

// Span is one annotated fragment of an error-detection task.
type Span struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// MultipleChoicePayload holds a prompt with exactly one correct option.
type MultipleChoicePayload struct {
	Prompt          string   `json:"prompt"`
	Options         []Option `json:"options"`
	CorrectOptionID string   `json:"correct_option_id"`
}

// MultiSelectPayload holds a prompt where any subset of options may be correct.
type MultiSelectPayload struct {
	Prompt           string   `json:"prompt"`
	Options          []Option `json:"options"`
	CorrectOptionIDs []string `json:"correct_option_ids"`
}

// ClozePayload holds a text with blanks; Blanks lists the expected answer
// for each blank in order.
type ClozePayload struct {
	Text   string   `json:"text"`
	Blanks []string `json:"blanks"`
}

// MatchingPayload holds the full set of pairs to match.
type MatchingPayload struct {
	Prompt string      `json:"prompt,omitempty"`
	Pairs  []MatchPair `json:"pairs"`
}

// OrderingPayload holds items and their single canonical order.
type OrderingPayload struct {
	Prompt       string   `json:"prompt,omitempty"`
	Items        []Option `json:"items"`
	CorrectOrder []string `json:"correct_order"`
}

// TrueFalsePayload holds a statement and whether it is true.
type TrueFalsePayload struct {
	Statement string `json:"statement"`
	Answer    bool   `json:"answer"`
}

// SliderPayload holds a numeric target with an acceptance tolerance.
type SliderPayload struct {
	Prompt    string  `json:"prompt"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Target    float64 `json:"target"`
	Tolerance float64 `json:"tolerance"`
	Unit      string  `json:"unit,omitempty"`
}

// TextInputPayload holds a prompt with one or more accepted answers.
type TextInputPayload struct {
	Prompt          string   `json:"prompt"`
	AcceptedAnswers []string `json:"accepted_answers"`
}

// WordScramblePayload holds scrambled letters and the target word.
type WordScramblePayload struct {
	Scrambled string `json:"scrambled"`
	Word      string `json:"word"`
}

// ErrorDetectionPayload holds annotated spans and the indices of the
// erroneous ones.
type ErrorDetectionPayload struct {
	Prompt       string `json:"prompt,omitempty"`
	Spans        []Span `json:"spans"`
	ErrorIndices []int  `json:"error_indices"`
}

// FlashcardPayload holds the two faces of a self-assessed flashcard.
// AudioURL optionally points at generated pronunciation audio.
type FlashcardPayload struct {
	Front    string `json:"front"`
	Back     string `json:"back"`
	AudioURL string `json:"audio_url,omitempty"`
}

// DecodePayload unmarshals the item's raw payload into the typed struct
// for its variant. The caller receives one of the *Payload types above.
func (c *ContentItem) DecodePayload() (any, error) {
	var (
		payload any
		err     error
	)

	switch c.Variant {
	case VariantMultipleChoice:
		payload, err = decodeAs[MultipleChoicePayload](c.Payload)
	case VariantMultiSelect:
		payload, err = decodeAs[MultiSelectPayload](c.Payload)
	case VariantCloze:
		payload, err = decodeAs[ClozePayload](c.Payload)
	case VariantMatching:
		payload, err = decodeAs[MatchingPayload](c.Payload)
	case VariantOrdering:
		payload, err = decodeAs[OrderingPayload](c.Payload)
	case VariantTrueFalse:
		payload, err = decodeAs[TrueFalsePayload](c.Payload)
	case VariantSlider:
		payload, err = decodeAs[SliderPayload](c.Payload)
	case VariantTextInput:
		payload, err = decodeAs[TextInputPayload](c.Payload)
	case VariantWordScramble:
		payload, err = decodeAs[WordScramblePayload](c.Payload)
	case VariantErrorDetection:
		payload, err = decodeAs[ErrorDetectionPayload](c.Payload)
	case VariantFlashcard:
		payload, err = decodeAs[FlashcardPayload](c.Payload)
	default:
		return nil, ErrItemVariantInvalid
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrItemPayloadInvalid, err)
	}

	return payload, nil
}

func decodeAs[T any](raw json.RawMessage) (*T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
