package srs

// Quality is the 0-5 recall grade fed into the SM-2 algorithm.
type Quality int

// Named quality grades. The full 0-5 range is accepted; these are the
// values the engine itself produces.
const (
	QualityBlackout  Quality = 0
	QualityWrong     Quality = 1
	QualityIncorrect Quality = 2
	QualityHard      Quality = 3
	QualityGood      Quality = 4
	QualityPerfect   Quality = 5
)

// PassThreshold is the lowest quality that counts as a successful
// review; anything below resets the repetition streak.
const PassThreshold Quality = 3

// IsValid reports whether q is within the 0-5 grade scale.
func (q Quality) IsValid() bool {
	return q >= 0 && q <= 5
}

// QualityForBinary maps an all-or-nothing grading outcome to a quality
// grade: correct answers earn the top grade, incorrect ones a failing
// grade that still reflects a genuine attempt.
func QualityForBinary(correct bool) Quality {
	if correct {
		return QualityPerfect
	}
	return QualityIncorrect
}

// QualityForScore maps a partial-credit score in [0,1] to a quality
// grade using a fixed table. Exact or near-exact answers grade as
// perfect; anything below the lowest band grades as incorrect.
func QualityForScore(score float64) Quality {
	switch {
	case score >= 0.9:
		return QualityPerfect
	case score >= 0.6:
		return QualityGood
	case score >= 0.3:
		return QualityHard
	default:
		return QualityIncorrect
	}
}

// QualityForSelfAssessment maps a flashcard "known" flag to a quality
// grade; the learner self-grades, so there is no content comparison.
func QualityForSelfAssessment(known bool) Quality {
	return QualityForBinary(known)
}
