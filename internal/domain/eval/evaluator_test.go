package eval

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/lingora/practice-api/internal/domain"
)

func mustItem(t *testing.T, variant domain.Variant, payload any) *domain.ContentItem {
	t.Helper()

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}

	item, err := domain.NewContentItem(uuid.New(), uuid.New(), variant, raw, "")
	if err != nil {
		t.Fatalf("Failed to create content item: %v", err)
	}

	return item
}

func TestEvaluateMultipleChoice(t *testing.T) {
	t.Parallel()

	item := mustItem(t, domain.VariantMultipleChoice, domain.MultipleChoicePayload{
		Prompt: "Capital of Spain?",
		Options: []domain.Option{
			{ID: "a", Text: "Madrid"},
			{ID: "b", Text: "Barcelona"},
		},
		CorrectOptionID: "a",
	})

	result, err := Evaluate(item, domain.MultipleChoiceSubmission{OptionID: "a"}, 1200)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Correct || result.Score != 1.0 {
		t.Errorf("Expected correct with score 1.0, got %v / %v", result.Correct, result.Score)
	}
	if result.Canonical.Display != "Madrid" {
		t.Errorf("Expected canonical display Madrid, got %q", result.Canonical.Display)
	}
	if result.TimeSpentMs != 1200 {
		t.Errorf("Expected elapsed 1200ms on result, got %d", result.TimeSpentMs)
	}

	result, err = Evaluate(item, domain.MultipleChoiceSubmission{OptionID: "b"}, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Correct || result.Score != 0.0 {
		t.Errorf("Expected incorrect with score 0.0, got %v / %v", result.Correct, result.Score)
	}
	if result.Canonical.Display != "Madrid" {
		t.Error("Canonical answer must be computed for incorrect submissions too")
	}
}

func TestEvaluateMultiSelectJaccard(t *testing.T) {
	t.Parallel()

	item := mustItem(t, domain.VariantMultiSelect, domain.MultiSelectPayload{
		Options: []domain.Option{
			{ID: "A", Text: "ser"},
			{ID: "B", Text: "estar"},
			{ID: "C", Text: "ir"},
		},
		CorrectOptionIDs: []string{"A", "C"},
	})

	// Ground truth {A,C}, submission {A,B}: intersection 1, union 3.
	result, err := Evaluate(item, domain.MultiSelectSubmission{OptionIDs: []string{"A", "B"}}, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Correct {
		t.Error("Partial selection must not count as correct")
	}
	if math.Abs(result.Score-1.0/3.0) > 1e-9 {
		t.Errorf("Expected Jaccard score 1/3, got %v", result.Score)
	}

	result, err = Evaluate(item, domain.MultiSelectSubmission{OptionIDs: []string{"C", "A"}}, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Correct || result.Score != 1.0 {
		t.Errorf("Order-independent exact selection should be correct, got %v / %v",
			result.Correct, result.Score)
	}
}

func TestEvaluateClozePartialCredit(t *testing.T) {
	t.Parallel()

	item := mustItem(t, domain.VariantCloze, domain.ClozePayload{
		Text:   "Yo ___ al mercado y ___ pan, luego ___ a casa y ___.",
		Blanks: []string{"fui", "compré", "volví", "cociné"},
	})

	result, err := Evaluate(item, domain.ClozeSubmission{
		Answers: []string{"fui", "compré", "volví", "dormí"},
	}, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Correct {
		t.Error("Three of four blanks must not count as correct")
	}
	if result.Score != 0.75 {
		t.Errorf("Expected score 0.75, got %v", result.Score)
	}

	// Case folding and trimming apply per blank.
	result, err = Evaluate(item, domain.ClozeSubmission{
		Answers: []string{" FUI ", "Compré", "volví", "COCINÉ"},
	}, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Correct || result.Score != 1.0 {
		t.Errorf("Normalized blanks should grade correct, got %v / %v", result.Correct, result.Score)
	}
}

func TestEvaluateMatching(t *testing.T) {
	t.Parallel()

	item := mustItem(t, domain.VariantMatching, domain.MatchingPayload{
		Pairs: []domain.MatchPair{
			{LeftID: "l1", LeftText: "perro", RightID: "r1", RightText: "dog"},
			{LeftID: "l2", LeftText: "gato", RightID: "r2", RightText: "cat"},
			{LeftID: "l3", LeftText: "pájaro", RightID: "r3", RightText: "bird"},
		},
	})

	result, err := Evaluate(item, domain.MatchingSubmission{
		Pairs: map[string]string{"l1": "r1", "l2": "r3", "l3": "r2"},
	}, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Correct {
		t.Error("One correct pair of three must not count as correct")
	}
	if math.Abs(result.Score-1.0/3.0) > 1e-9 {
		t.Errorf("Expected score 1/3, got %v", result.Score)
	}
}

func TestEvaluateOrderingAllOrNothing(t *testing.T) {
	t.Parallel()

	item := mustItem(t, domain.VariantOrdering, domain.OrderingPayload{
		Items: []domain.Option{
			{ID: "1", Text: "primero"},
			{ID: "2", Text: "segundo"},
			{ID: "3", Text: "tercero"},
		},
		CorrectOrder: []string{"1", "2", "3"},
	})

	result, err := Evaluate(item, domain.OrderingSubmission{Order: []string{"1", "3", "2"}}, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Correct || result.Score != 0.0 {
		t.Errorf("Near-miss ordering must score zero, got %v / %v", result.Correct, result.Score)
	}

	result, err = Evaluate(item, domain.OrderingSubmission{Order: []string{"1", "2", "3"}}, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Correct || result.Score != 1.0 {
		t.Errorf("Exact ordering should be correct, got %v / %v", result.Correct, result.Score)
	}
	if result.Canonical.Display != "primero → segundo → tercero" {
		t.Errorf("Unexpected canonical display %q", result.Canonical.Display)
	}
}

func TestEvaluateSliderTolerance(t *testing.T) {
	t.Parallel()

	item := mustItem(t, domain.VariantSlider, domain.SliderPayload{
		Min: 0, Max: 100, Target: 42, Tolerance: 2.5,
	})

	testCases := []struct {
		value   float64
		correct bool
	}{
		{42, true},
		{44.5, true},
		{39.5, true},
		{45, false},
		{0, false},
	}

	for _, tc := range testCases {
		result, err := Evaluate(item, domain.SliderSubmission{Value: tc.value}, 0)
		if err != nil {
			t.Fatalf("value %v: unexpected error %v", tc.value, err)
		}
		if result.Correct != tc.correct {
			t.Errorf("value %v: expected correct=%v, got %v", tc.value, tc.correct, result.Correct)
		}
	}
}

func TestEvaluateTextInputAcceptedVariants(t *testing.T) {
	t.Parallel()

	item := mustItem(t, domain.VariantTextInput, domain.TextInputPayload{
		Prompt:          "Translate: the bread",
		AcceptedAnswers: []string{"el pan", "pan"},
	})

	for _, answer := range []string{"el pan", "El Pan", "  pan  "} {
		result, err := Evaluate(item, domain.TextInputSubmission{Text: answer}, 0)
		if err != nil {
			t.Fatalf("answer %q: unexpected error %v", answer, err)
		}
		if !result.Correct {
			t.Errorf("answer %q should be accepted", answer)
		}
	}

	result, err := Evaluate(item, domain.TextInputSubmission{Text: "el  pan"}, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Correct {
		t.Error("Internal whitespace is preserved; doubled space must not match")
	}
}

func TestEvaluateWordScramble(t *testing.T) {
	t.Parallel()

	item := mustItem(t, domain.VariantWordScramble, domain.WordScramblePayload{
		Scrambled: "zanamna",
		Word:      "manzana",
	})

	result, err := Evaluate(item, domain.WordScrambleSubmission{Text: "Manzana"}, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Correct {
		t.Error("Case-folded match should be accepted")
	}

	result, err = Evaluate(item, domain.WordScrambleSubmission{Text: "manzanas"}, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Correct {
		t.Error("Different word must not be accepted")
	}
}

func TestEvaluateErrorDetectionF1(t *testing.T) {
	t.Parallel()

	item := mustItem(t, domain.VariantErrorDetection, domain.ErrorDetectionPayload{
		Spans: []domain.Span{
			{Index: 0, Text: "Yo"},
			{Index: 1, Text: "soy"},
			{Index: 2, Text: "veinte"},
			{Index: 3, Text: "años"},
		},
		ErrorIndices: []int{1, 2},
	})

	// Selected {1,3}: TP=1, precision 1/2, recall 1/2, F1 = 1/2.
	result, err := Evaluate(item, domain.ErrorDetectionSubmission{Indices: []int{1, 3}}, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Correct {
		t.Error("Partial span selection must not count as correct")
	}
	if math.Abs(result.Score-0.5) > 1e-9 {
		t.Errorf("Expected F1 0.5, got %v", result.Score)
	}

	result, err = Evaluate(item, domain.ErrorDetectionSubmission{Indices: []int{2, 1}}, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Correct || result.Score != 1.0 {
		t.Errorf("Exact set should be correct, got %v / %v", result.Correct, result.Score)
	}

	result, err = Evaluate(item, domain.ErrorDetectionSubmission{Indices: nil}, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Score != 0.0 {
		t.Errorf("Empty selection against non-empty truth should score 0, got %v", result.Score)
	}
}

func TestEvaluateFlashcardSelfAssessment(t *testing.T) {
	t.Parallel()

	item := mustItem(t, domain.VariantFlashcard, domain.FlashcardPayload{
		Front:    "la manzana",
		Back:     "the apple",
		AudioURL: "https://cdn.example.com/audio/manzana.mp3",
	})

	result, err := Evaluate(item, domain.FlashcardSubmission{Known: true}, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Correct || result.Score != 1.0 {
		t.Errorf("Known flag passes through, got %v / %v", result.Correct, result.Score)
	}
	if result.Canonical.Display != "the apple" {
		t.Errorf("Expected canonical display of the back face, got %q", result.Canonical.Display)
	}

	result, err = Evaluate(item, domain.FlashcardSubmission{Known: false}, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Correct || result.Score != 0.0 {
		t.Errorf("Unknown flag passes through, got %v / %v", result.Correct, result.Score)
	}
}

func TestEvaluateRejectsMismatchedSubmission(t *testing.T) {
	t.Parallel()

	item := mustItem(t, domain.VariantSlider, domain.SliderPayload{
		Min: 0, Max: 10, Target: 5, Tolerance: 1,
	})

	_, err := Evaluate(item, domain.TextInputSubmission{Text: "five"}, 0)
	if !errors.Is(err, ErrInvalidSubmissionShape) {
		t.Errorf("Expected ErrInvalidSubmissionShape, got %v", err)
	}

	if _, err := Evaluate(nil, domain.SliderSubmission{Value: 5}, 0); !errors.Is(err, ErrNilItem) {
		t.Errorf("Expected ErrNilItem, got %v", err)
	}
	if _, err := Evaluate(item, nil, 0); !errors.Is(err, ErrNilSubmission) {
		t.Errorf("Expected ErrNilSubmission, got %v", err)
	}
}

func TestEvaluateRoundTripCanonicalAnswers(t *testing.T) {
	t.Parallel()

	// Submitting the canonical answer must grade correct with score 1.0
	// for every variant.
	testCases := []struct {
		name       string
		variant    domain.Variant
		payload    any
		submission domain.Submission
	}{
		{
			"multiple choice", domain.VariantMultipleChoice,
			domain.MultipleChoicePayload{
				Options:         []domain.Option{{ID: "x", Text: "sí"}},
				CorrectOptionID: "x",
			},
			domain.MultipleChoiceSubmission{OptionID: "x"},
		},
		{
			"multi select", domain.VariantMultiSelect,
			domain.MultiSelectPayload{CorrectOptionIDs: []string{"a", "b"}},
			domain.MultiSelectSubmission{OptionIDs: []string{"a", "b"}},
		},
		{
			"cloze", domain.VariantCloze,
			domain.ClozePayload{Blanks: []string{"es", "está"}},
			domain.ClozeSubmission{Answers: []string{"es", "está"}},
		},
		{
			"matching", domain.VariantMatching,
			domain.MatchingPayload{Pairs: []domain.MatchPair{
				{LeftID: "l", RightID: "r"},
			}},
			domain.MatchingSubmission{Pairs: map[string]string{"l": "r"}},
		},
		{
			"ordering", domain.VariantOrdering,
			domain.OrderingPayload{CorrectOrder: []string{"1", "2"}},
			domain.OrderingSubmission{Order: []string{"1", "2"}},
		},
		{
			"true false", domain.VariantTrueFalse,
			domain.TrueFalsePayload{Statement: "dos y dos son cuatro", Answer: true},
			domain.TrueFalseSubmission{Answer: true},
		},
		{
			"slider", domain.VariantSlider,
			domain.SliderPayload{Target: 7, Tolerance: 0.5},
			domain.SliderSubmission{Value: 7},
		},
		{
			"text input", domain.VariantTextInput,
			domain.TextInputPayload{AcceptedAnswers: []string{"hola"}},
			domain.TextInputSubmission{Text: "hola"},
		},
		{
			"word scramble", domain.VariantWordScramble,
			domain.WordScramblePayload{Scrambled: "loha", Word: "hola"},
			domain.WordScrambleSubmission{Text: "hola"},
		},
		{
			"error detection", domain.VariantErrorDetection,
			domain.ErrorDetectionPayload{
				Spans:        []domain.Span{{Index: 0, Text: "mal"}},
				ErrorIndices: []int{0},
			},
			domain.ErrorDetectionSubmission{Indices: []int{0}},
		},
		{
			"flashcard", domain.VariantFlashcard,
			domain.FlashcardPayload{Front: "f", Back: "b"},
			domain.FlashcardSubmission{Known: true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			item := mustItem(t, tc.variant, tc.payload)

			result, err := Evaluate(item, tc.submission, 0)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !result.Correct || result.Score != 1.0 {
				t.Errorf("Expected correct with score 1.0, got %v / %v", result.Correct, result.Score)
			}
		})
	}
}

func TestDecodeSubmission(t *testing.T) {
	t.Parallel()

	t.Run("decodes the variant's shape", func(t *testing.T) {
		sub, err := DecodeSubmission(domain.VariantSlider, json.RawMessage(`{"value": 3.5}`))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		slider, ok := sub.(domain.SliderSubmission)
		if !ok || slider.Value != 3.5 {
			t.Errorf("Expected SliderSubmission{3.5}, got %#v", sub)
		}
	})

	t.Run("rejects mismatched JSON types", func(t *testing.T) {
		_, err := DecodeSubmission(domain.VariantSlider, json.RawMessage(`{"value": "high"}`))
		if !errors.Is(err, ErrInvalidSubmissionShape) {
			t.Errorf("Expected ErrInvalidSubmissionShape, got %v", err)
		}
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		_, err := DecodeSubmission(domain.VariantTrueFalse, json.RawMessage(`{"answer": true, "extra": 1}`))
		if !errors.Is(err, ErrInvalidSubmissionShape) {
			t.Errorf("Expected ErrInvalidSubmissionShape, got %v", err)
		}
	})

	t.Run("rejects unknown variants", func(t *testing.T) {
		_, err := DecodeSubmission(domain.Variant("essay"), json.RawMessage(`{}`))
		if !errors.Is(err, domain.ErrItemVariantInvalid) {
			t.Errorf("Expected ErrItemVariantInvalid, got %v", err)
		}
	})
}
