package srs

import "github.com/lingora/practice-api/internal/domain"

// Params defines the configurable constants of the SM-2 variant.
type Params struct {
	// MinEaseFactor is the floor the ease factor is clamped to.
	MinEaseFactor float64

	// PassThreshold is the lowest quality counted as a pass; failing
	// reviews reset the repetition streak.
	PassThreshold Quality

	// Fixed intervals for the first and second successful repetitions.
	FirstIntervalDays  int
	SecondIntervalDays int

	// RelearnIntervalDays is the interval assigned after a failed review.
	RelearnIntervalDays int
}

// NewDefaultParams returns the standard SM-2 constants.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:       domain.MinEaseFactor,
		PassThreshold:       PassThreshold,
		FirstIntervalDays:   1,
		SecondIntervalDays:  6,
		RelearnIntervalDays: 1,
	}
}
