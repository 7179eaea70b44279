// Package eval grades submitted answers against content items. One
// polymorphic contract covers every task variant: Evaluate dispatches on
// the item's variant, applies that variant's grading rule, and always
// computes the canonical answer for display, correct or not.
//
// Grading is pure: no I/O, no clock reads. Elapsed time is supplied by
// the caller and passed through on the result.
package eval

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lingora/practice-api/internal/domain"
)

// Common errors
var (
	// ErrInvalidSubmissionShape signals a submission whose type does not
	// match the task variant. This is a contract violation by the
	// caller, not a wrong answer.
	ErrInvalidSubmissionShape = errors.New("submission shape does not match task variant")

	// ErrNilItem signals a missing content item.
	ErrNilItem = errors.New("content item cannot be nil")

	// ErrNilSubmission signals a missing submission.
	ErrNilSubmission = errors.New("submission cannot be nil")
)

// Evaluate grades a submission against a content item and returns the
// graded result. A submission of the wrong type for the item's variant
// yields ErrInvalidSubmissionShape; a malformed payload yields the
// domain payload error.
func Evaluate(
	item *domain.ContentItem,
	submission domain.Submission,
	elapsedMs int64,
) (*domain.EvaluationResult, error) {
	if item == nil {
		return nil, ErrNilItem
	}
	if submission == nil {
		return nil, ErrNilSubmission
	}

	payload, err := item.DecodePayload()
	if err != nil {
		return nil, err
	}

	var result *domain.EvaluationResult

	switch item.Variant {
	case domain.VariantMultipleChoice:
		result, err = gradeMultipleChoice(payload.(*domain.MultipleChoicePayload), submission)
	case domain.VariantMultiSelect:
		result, err = gradeMultiSelect(payload.(*domain.MultiSelectPayload), submission)
	case domain.VariantCloze:
		result, err = gradeCloze(payload.(*domain.ClozePayload), submission)
	case domain.VariantMatching:
		result, err = gradeMatching(payload.(*domain.MatchingPayload), submission)
	case domain.VariantOrdering:
		result, err = gradeOrdering(payload.(*domain.OrderingPayload), submission)
	case domain.VariantTrueFalse:
		result, err = gradeTrueFalse(payload.(*domain.TrueFalsePayload), submission)
	case domain.VariantSlider:
		result, err = gradeSlider(payload.(*domain.SliderPayload), submission)
	case domain.VariantTextInput:
		result, err = gradeTextInput(payload.(*domain.TextInputPayload), submission)
	case domain.VariantWordScramble:
		result, err = gradeWordScramble(payload.(*domain.WordScramblePayload), submission)
	case domain.VariantErrorDetection:
		result, err = gradeErrorDetection(payload.(*domain.ErrorDetectionPayload), submission)
	case domain.VariantFlashcard:
		result, err = gradeFlashcard(payload.(*domain.FlashcardPayload), submission)
	default:
		return nil, domain.ErrItemVariantInvalid
	}

	if err != nil {
		return nil, err
	}

	result.TimeSpentMs = elapsedMs
	return result, nil
}

// DecodeSubmission parses a raw JSON submission into the typed shape
// expected by the given variant. Unknown fields and mismatched JSON
// types are rejected as shape errors so a malformed client payload
// never gets silently coerced into a gradeable answer.
func DecodeSubmission(variant domain.Variant, raw json.RawMessage) (domain.Submission, error) {
	var (
		submission domain.Submission
		err        error
	)

	switch variant {
	case domain.VariantMultipleChoice:
		submission, err = decodeStrict[domain.MultipleChoiceSubmission](raw)
	case domain.VariantMultiSelect:
		submission, err = decodeStrict[domain.MultiSelectSubmission](raw)
	case domain.VariantCloze:
		submission, err = decodeStrict[domain.ClozeSubmission](raw)
	case domain.VariantMatching:
		submission, err = decodeStrict[domain.MatchingSubmission](raw)
	case domain.VariantOrdering:
		submission, err = decodeStrict[domain.OrderingSubmission](raw)
	case domain.VariantTrueFalse:
		submission, err = decodeStrict[domain.TrueFalseSubmission](raw)
	case domain.VariantSlider:
		submission, err = decodeStrict[domain.SliderSubmission](raw)
	case domain.VariantTextInput:
		submission, err = decodeStrict[domain.TextInputSubmission](raw)
	case domain.VariantWordScramble:
		submission, err = decodeStrict[domain.WordScrambleSubmission](raw)
	case domain.VariantErrorDetection:
		submission, err = decodeStrict[domain.ErrorDetectionSubmission](raw)
	case domain.VariantFlashcard:
		submission, err = decodeStrict[domain.FlashcardSubmission](raw)
	default:
		return nil, domain.ErrItemVariantInvalid
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSubmissionShape, err)
	}

	return submission, nil
}

func decodeStrict[T domain.Submission](raw json.RawMessage) (T, error) {
	var v T
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, err
	}
	return v, nil
}

// shapeError builds the error for a submission whose Go type does not
// match the variant being graded.
func shapeError(variant domain.Variant, submission domain.Submission) error {
	return fmt.Errorf("%w: %s got %T", ErrInvalidSubmissionShape, variant, submission)
}
