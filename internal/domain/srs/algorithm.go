package srs

import (
	"math"
	"time"

	"github.com/lingora/practice-api/internal/domain"
)

// calculateNewEaseFactor applies the SM-2 ease factor adjustment for the
// given quality grade.
//
// The ease factor represents how easily the learner recalls the item -
// higher values make intervals grow faster. The adjustment rewards high
// quality grades and penalizes low ones, and the result is clamped to
// the configured minimum (there is no upper bound in this variant).
func calculateNewEaseFactor(currentEF float64, quality Quality, params *Params) float64 {
	q := float64(quality)
	newEF := currentEF + (0.1 - (5-q)*(0.08+(5-q)*0.02))

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the next interval in days.
//
// Failed reviews (quality below the pass threshold) reset to the relearn
// interval. The first two successful repetitions use fixed intervals;
// after that the interval grows by the new ease factor.
func calculateNewInterval(
	currentInterval int,
	newRepetition int,
	newEaseFactor float64,
	quality Quality,
	params *Params,
) int {
	if quality < params.PassThreshold {
		return params.RelearnIntervalDays
	}

	switch newRepetition {
	case 1:
		return params.FirstIntervalDays
	case 2:
		return params.SecondIntervalDays
	default:
		return int(math.Round(float64(currentInterval) * newEaseFactor))
	}
}

// calculateNextRecord computes the successor scheduling record for a
// graded review. It is a pure function: the injected now is the only
// clock, and the input record is copied, never modified.
//
// The update is total for any quality in [0,5] and any valid prior
// record; first-ever reviews fall out of the same formula because the
// first successful repetition takes the fixed-interval branch.
func calculateNextRecord(
	record *domain.SchedulingRecord,
	quality Quality,
	now time.Time,
	params *Params,
) *domain.SchedulingRecord {
	newRecord := &domain.SchedulingRecord{
		LearnerID:       record.LearnerID,
		ItemID:          record.ItemID,
		EaseFactor:      record.EaseFactor,
		RepetitionCount: record.RepetitionCount,
		IntervalDays:    record.IntervalDays,
		NextDueAt:       record.NextDueAt,
		LastReviewedAt:  record.LastReviewedAt,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}

	newRecord.EaseFactor = calculateNewEaseFactor(record.EaseFactor, quality, params)

	if quality < params.PassThreshold {
		newRecord.RepetitionCount = 0
	} else {
		newRecord.RepetitionCount = record.RepetitionCount + 1
	}

	newRecord.IntervalDays = calculateNewInterval(
		record.IntervalDays,
		newRecord.RepetitionCount,
		newRecord.EaseFactor,
		quality,
		params,
	)

	newRecord.LastReviewedAt = now
	newRecord.NextDueAt = now.AddDate(0, 0, newRecord.IntervalDays)
	newRecord.UpdatedAt = now

	return newRecord
}
