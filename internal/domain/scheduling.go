package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Scheduling record validation errors.
var (
	ErrRecordLearnerIDEmpty = errors.New("scheduling record learner ID cannot be empty")
	ErrRecordItemIDEmpty    = errors.New("scheduling record item ID cannot be empty")
	ErrInvalidIntervalDays  = errors.New("interval days must be greater than or equal to 0")
	ErrInvalidRepetition    = errors.New("repetition count must be greater than or equal to 0")
	ErrInvalidEaseFactor    = errors.New("ease factor must be at least 1.3")
)

// MinEaseFactor is the SM-2 lower bound on the ease factor.
const MinEaseFactor = 1.3

// DefaultEaseFactor is the ease factor assigned on first encounter.
const DefaultEaseFactor = 2.5

// easeFactorEpsilon absorbs floating-point noise when validating the
// clamp boundary.
const easeFactorEpsilon = 1e-9

// SchedulingRecord tracks a learner's spaced repetition state for one
// content item. It is mutated exclusively by the SM-2 scheduler after a
// graded review; the scheduler returns new values rather than modifying
// records in place.
type SchedulingRecord struct {
	LearnerID       uuid.UUID `json:"learner_id"`
	ItemID          uuid.UUID `json:"item_id"`
	EaseFactor      float64   `json:"ease_factor"`
	RepetitionCount int       `json:"repetition_count"`
	IntervalDays    int       `json:"interval_days"`
	NextDueAt       time.Time `json:"next_due_at"`
	LastReviewedAt  time.Time `json:"last_reviewed_at"` // zero value = never reviewed
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewSchedulingRecord creates the state for a first encounter: default
// ease factor, zero counts, due immediately.
func NewSchedulingRecord(learnerID, itemID uuid.UUID, now time.Time) (*SchedulingRecord, error) {
	record := &SchedulingRecord{
		LearnerID:       learnerID,
		ItemID:          itemID,
		EaseFactor:      DefaultEaseFactor,
		RepetitionCount: 0,
		IntervalDays:    0,
		NextDueAt:       now,
		LastReviewedAt:  time.Time{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the SchedulingRecord has valid data.
func (r *SchedulingRecord) Validate() error {
	if r.LearnerID == uuid.Nil {
		return ErrRecordLearnerIDEmpty
	}

	if r.ItemID == uuid.Nil {
		return ErrRecordItemIDEmpty
	}

	if r.IntervalDays < 0 {
		return ErrInvalidIntervalDays
	}

	if r.RepetitionCount < 0 {
		return ErrInvalidRepetition
	}

	if r.EaseFactor < MinEaseFactor-easeFactorEpsilon {
		return ErrInvalidEaseFactor
	}

	return nil
}

// IsDue reports whether the record's next review time has passed.
func (r *SchedulingRecord) IsDue(now time.Time) bool {
	return !r.NextDueAt.After(now)
}

// IsNew reports whether the item has never been passed in review.
func (r *SchedulingRecord) IsNew() bool {
	return r.RepetitionCount == 0
}
