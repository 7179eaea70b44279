package domain

// Submission is the marker interface for per-variant answer shapes.
// Each task variant accepts exactly one submission type; anything else
// is rejected by the evaluation engine as a shape mismatch.
type Submission interface {
	submission()
}

// MultipleChoiceSubmission selects a single option.
type MultipleChoiceSubmission struct {
	OptionID string `json:"option_id"`
}

// MultiSelectSubmission selects a set of options.
type MultiSelectSubmission struct {
	OptionIDs []string `json:"option_ids"`
}

// ClozeSubmission supplies one string per blank, in blank order.
type ClozeSubmission struct {
	Answers []string `json:"answers"`
}

// MatchingSubmission maps each left-side ID to a chosen right-side ID.
type MatchingSubmission struct {
	Pairs map[string]string `json:"pairs"`
}

// OrderingSubmission supplies item IDs in the chosen order.
type OrderingSubmission struct {
	Order []string `json:"order"`
}

// TrueFalseSubmission answers a true/false statement.
type TrueFalseSubmission struct {
	Answer bool `json:"answer"`
}

// SliderSubmission supplies a numeric value.
type SliderSubmission struct {
	Value float64 `json:"value"`
}

// TextInputSubmission supplies free text.
type TextInputSubmission struct {
	Text string `json:"text"`
}

// WordScrambleSubmission supplies the unscrambled word.
type WordScrambleSubmission struct {
	Text string `json:"text"`
}

// ErrorDetectionSubmission selects the span indices believed erroneous.
type ErrorDetectionSubmission struct {
	Indices []int `json:"indices"`
}

// FlashcardSubmission is the learner's self-assessment.
type FlashcardSubmission struct {
	Known bool `json:"known"`
}

func (MultipleChoiceSubmission) submission() {}
func (MultiSelectSubmission) submission()    {}
func (ClozeSubmission) submission()          {}
func (MatchingSubmission) submission()       {}
func (OrderingSubmission) submission()       {}
func (TrueFalseSubmission) submission()      {}
func (SliderSubmission) submission()         {}
func (TextInputSubmission) submission()      {}
func (WordScrambleSubmission) submission()   {}
func (ErrorDetectionSubmission) submission() {}
func (FlashcardSubmission) submission()      {}
