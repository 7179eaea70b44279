package eval

import (
	"strings"

	"github.com/lingora/practice-api/internal/domain"
)

// gradeCloze compares each blank's answer under normalization and
// scores the fraction filled correctly; only all blanks correct counts
// as correct. A submission with the wrong number of answers still
// grades: missing blanks count as wrong, extras are ignored.
func gradeCloze(
	payload *domain.ClozePayload,
	submission domain.Submission,
) (*domain.EvaluationResult, error) {
	sub, ok := submission.(domain.ClozeSubmission)
	if !ok {
		return nil, shapeError(domain.VariantCloze, submission)
	}

	total := len(payload.Blanks)
	correctBlanks := 0
	for i, want := range payload.Blanks {
		if i < len(sub.Answers) && textEqual(sub.Answers[i], want) {
			correctBlanks++
		}
	}

	score := 1.0
	if total > 0 {
		score = float64(correctBlanks) / float64(total)
	}

	return &domain.EvaluationResult{
		Correct: score == 1.0,
		Score:   score,
		Canonical: domain.CanonicalAnswer{
			Display: strings.Join(payload.Blanks, ", "),
			Value:   payload.Blanks,
		},
	}, nil
}

// gradeTextInput accepts a normalized exact match against any of the
// accepted answers.
func gradeTextInput(
	payload *domain.TextInputPayload,
	submission domain.Submission,
) (*domain.EvaluationResult, error) {
	sub, ok := submission.(domain.TextInputSubmission)
	if !ok {
		return nil, shapeError(domain.VariantTextInput, submission)
	}

	correct := false
	for _, accepted := range payload.AcceptedAnswers {
		if textEqual(sub.Text, accepted) {
			correct = true
			break
		}
	}

	display := ""
	if len(payload.AcceptedAnswers) > 0 {
		display = payload.AcceptedAnswers[0]
	}

	return &domain.EvaluationResult{
		Correct: correct,
		Score:   binaryScore(correct),
		Canonical: domain.CanonicalAnswer{
			Display: display,
			Value:   payload.AcceptedAnswers,
		},
	}, nil
}

// gradeWordScramble accepts a normalized exact match against the single
// target word.
func gradeWordScramble(
	payload *domain.WordScramblePayload,
	submission domain.Submission,
) (*domain.EvaluationResult, error) {
	sub, ok := submission.(domain.WordScrambleSubmission)
	if !ok {
		return nil, shapeError(domain.VariantWordScramble, submission)
	}

	correct := textEqual(sub.Text, payload.Word)

	return &domain.EvaluationResult{
		Correct: correct,
		Score:   binaryScore(correct),
		Canonical: domain.CanonicalAnswer{
			Display: payload.Word,
			Value:   payload.Word,
		},
	}, nil
}
