package eval

import (
	"sort"
	"strings"

	"github.com/lingora/practice-api/internal/domain"
)

// gradeMultipleChoice checks a single selected option against the one
// correct option ID.
func gradeMultipleChoice(
	payload *domain.MultipleChoicePayload,
	submission domain.Submission,
) (*domain.EvaluationResult, error) {
	sub, ok := submission.(domain.MultipleChoiceSubmission)
	if !ok {
		return nil, shapeError(domain.VariantMultipleChoice, submission)
	}

	correct := sub.OptionID == payload.CorrectOptionID

	return &domain.EvaluationResult{
		Correct: correct,
		Score:   binaryScore(correct),
		Canonical: domain.CanonicalAnswer{
			Display: optionText(payload.Options, payload.CorrectOptionID),
			Value:   payload.CorrectOptionID,
		},
	}, nil
}

// gradeMultiSelect scores the selected set against the ground truth with
// the Jaccard index; only a perfect match counts as correct.
func gradeMultiSelect(
	payload *domain.MultiSelectPayload,
	submission domain.Submission,
) (*domain.EvaluationResult, error) {
	sub, ok := submission.(domain.MultiSelectSubmission)
	if !ok {
		return nil, shapeError(domain.VariantMultiSelect, submission)
	}

	truth := stringSet(payload.CorrectOptionIDs)
	selected := stringSet(sub.OptionIDs)

	intersection := 0
	for id := range selected {
		if truth[id] {
			intersection++
		}
	}
	union := len(truth) + len(selected) - intersection

	score := 1.0
	if union > 0 {
		score = float64(intersection) / float64(union)
	}

	texts := make([]string, 0, len(payload.CorrectOptionIDs))
	for _, id := range payload.CorrectOptionIDs {
		texts = append(texts, optionText(payload.Options, id))
	}

	return &domain.EvaluationResult{
		Correct: score == 1.0,
		Score:   score,
		Canonical: domain.CanonicalAnswer{
			Display: strings.Join(texts, ", "),
			Value:   payload.CorrectOptionIDs,
		},
	}, nil
}

// gradeTrueFalse checks a boolean answer against the statement's truth.
func gradeTrueFalse(
	payload *domain.TrueFalsePayload,
	submission domain.Submission,
) (*domain.EvaluationResult, error) {
	sub, ok := submission.(domain.TrueFalseSubmission)
	if !ok {
		return nil, shapeError(domain.VariantTrueFalse, submission)
	}

	correct := sub.Answer == payload.Answer

	display := "false"
	if payload.Answer {
		display = "true"
	}

	return &domain.EvaluationResult{
		Correct: correct,
		Score:   binaryScore(correct),
		Canonical: domain.CanonicalAnswer{
			Display: display,
			Value:   payload.Answer,
		},
	}, nil
}

// gradeErrorDetection scores the selected span indices against the
// ground-truth error set using F1, so both misses and false alarms cost
// credit. Only the exact set counts as correct.
func gradeErrorDetection(
	payload *domain.ErrorDetectionPayload,
	submission domain.Submission,
) (*domain.EvaluationResult, error) {
	sub, ok := submission.(domain.ErrorDetectionSubmission)
	if !ok {
		return nil, shapeError(domain.VariantErrorDetection, submission)
	}

	truth := intSet(payload.ErrorIndices)
	selected := intSet(sub.Indices)

	truePositives := 0
	for idx := range selected {
		if truth[idx] {
			truePositives++
		}
	}

	score := f1Score(truePositives, len(selected), len(truth))
	exact := len(selected) == len(truth) && truePositives == len(truth)

	indices := make([]int, 0, len(truth))
	texts := make([]string, 0, len(truth))
	for idx := range truth {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	for _, idx := range indices {
		for _, span := range payload.Spans {
			if span.Index == idx {
				texts = append(texts, span.Text)
				break
			}
		}
	}

	return &domain.EvaluationResult{
		Correct: exact,
		Score:   score,
		Canonical: domain.CanonicalAnswer{
			Display: strings.Join(texts, ", "),
			Value:   indices,
		},
	}, nil
}

// f1Score computes the harmonic mean of precision and recall. Both sets
// empty means a perfect (vacuous) match; otherwise zero overlap scores
// zero.
func f1Score(truePositives, selectedCount, truthCount int) float64 {
	if selectedCount == 0 && truthCount == 0 {
		return 1.0
	}
	if truePositives == 0 {
		return 0.0
	}

	precision := float64(truePositives) / float64(selectedCount)
	recall := float64(truePositives) / float64(truthCount)
	return 2 * precision * recall / (precision + recall)
}

func binaryScore(correct bool) float64 {
	if correct {
		return 1.0
	}
	return 0.0
}

func optionText(options []domain.Option, id string) string {
	for _, opt := range options {
		if opt.ID == id {
			return opt.Text
		}
	}
	return id
}

func stringSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func intSet(values []int) map[int]bool {
	set := make(map[int]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
