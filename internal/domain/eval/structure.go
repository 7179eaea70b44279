package eval

import (
	"fmt"
	"math"
	"strings"

	"github.com/lingora/practice-api/internal/domain"
)

// gradeMatching scores the fraction of left/right pairings matched
// correctly; only all pairs correct counts as correct.
func gradeMatching(
	payload *domain.MatchingPayload,
	submission domain.Submission,
) (*domain.EvaluationResult, error) {
	sub, ok := submission.(domain.MatchingSubmission)
	if !ok {
		return nil, shapeError(domain.VariantMatching, submission)
	}

	total := len(payload.Pairs)
	correctPairs := 0
	for _, pair := range payload.Pairs {
		if sub.Pairs[pair.LeftID] == pair.RightID {
			correctPairs++
		}
	}

	score := 1.0
	if total > 0 {
		score = float64(correctPairs) / float64(total)
	}

	displays := make([]string, 0, total)
	truth := make(map[string]string, total)
	for _, pair := range payload.Pairs {
		displays = append(displays, fmt.Sprintf("%s — %s", pair.LeftText, pair.RightText))
		truth[pair.LeftID] = pair.RightID
	}

	return &domain.EvaluationResult{
		Correct: score == 1.0,
		Score:   score,
		Canonical: domain.CanonicalAnswer{
			Display: strings.Join(displays, "; "),
			Value:   truth,
		},
	}, nil
}

// gradeOrdering requires the submitted sequence to equal the canonical
// order exactly. There is no partial credit: position errors compound,
// so a near-miss ordering is still a failed recall.
func gradeOrdering(
	payload *domain.OrderingPayload,
	submission domain.Submission,
) (*domain.EvaluationResult, error) {
	sub, ok := submission.(domain.OrderingSubmission)
	if !ok {
		return nil, shapeError(domain.VariantOrdering, submission)
	}

	correct := len(sub.Order) == len(payload.CorrectOrder)
	if correct {
		for i, id := range payload.CorrectOrder {
			if sub.Order[i] != id {
				correct = false
				break
			}
		}
	}

	texts := make([]string, 0, len(payload.CorrectOrder))
	for _, id := range payload.CorrectOrder {
		texts = append(texts, optionText(payload.Items, id))
	}

	return &domain.EvaluationResult{
		Correct: correct,
		Score:   binaryScore(correct),
		Canonical: domain.CanonicalAnswer{
			Display: strings.Join(texts, " → "),
			Value:   payload.CorrectOrder,
		},
	}, nil
}

// gradeSlider accepts any value within the tolerance window around the
// target.
func gradeSlider(
	payload *domain.SliderPayload,
	submission domain.Submission,
) (*domain.EvaluationResult, error) {
	sub, ok := submission.(domain.SliderSubmission)
	if !ok {
		return nil, shapeError(domain.VariantSlider, submission)
	}

	correct := math.Abs(sub.Value-payload.Target) <= payload.Tolerance

	display := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", payload.Target), "0"), ".")
	if payload.Unit != "" {
		display += " " + payload.Unit
	}

	return &domain.EvaluationResult{
		Correct: correct,
		Score:   binaryScore(correct),
		Canonical: domain.CanonicalAnswer{
			Display: display,
			Value:   payload.Target,
		},
	}, nil
}

// gradeFlashcard passes the learner's self-assessment through; there is
// no content comparison.
func gradeFlashcard(
	payload *domain.FlashcardPayload,
	submission domain.Submission,
) (*domain.EvaluationResult, error) {
	sub, ok := submission.(domain.FlashcardSubmission)
	if !ok {
		return nil, shapeError(domain.VariantFlashcard, submission)
	}

	return &domain.EvaluationResult{
		Correct: sub.Known,
		Score:   binaryScore(sub.Known),
		Canonical: domain.CanonicalAnswer{
			Display: payload.Back,
			Value:   payload.Back,
		},
	}, nil
}
