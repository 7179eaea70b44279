package srs

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lingora/practice-api/internal/domain"
)

func TestCalculateNewEaseFactor(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name     string
		current  float64
		quality  Quality
		expected float64
	}{
		{
			name:     "perfect recall increases ease factor",
			current:  2.5,
			quality:  QualityPerfect,
			expected: 2.6, // 2.5 + 0.1
		},
		{
			name:     "good recall leaves ease factor unchanged",
			current:  2.5,
			quality:  QualityGood,
			expected: 2.5, // 0.1 - 1*(0.08 + 1*0.02) = 0
		},
		{
			name:     "hard recall decreases ease factor",
			current:  2.5,
			quality:  QualityHard,
			expected: 2.36, // 2.5 - 0.14
		},
		{
			name:     "incorrect answer decreases ease factor further",
			current:  2.5,
			quality:  QualityIncorrect,
			expected: 2.18, // 2.5 - 0.32
		},
		{
			name:     "blackout applies the largest penalty",
			current:  2.5,
			quality:  QualityBlackout,
			expected: 1.7, // 2.5 - 0.8
		},
		{
			name:     "minimum ease factor is enforced",
			current:  1.4,
			quality:  QualityBlackout,
			expected: 1.3, // 1.4 - 0.8 = 0.6, clamped to 1.3
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			newEF := calculateNewEaseFactor(tc.current, tc.quality, params)

			if math.Abs(newEF-tc.expected) > 1e-9 {
				t.Errorf("Expected ease factor %v, got %v", tc.expected, newEF)
			}
		})
	}
}

func TestCalculateNewEaseFactorNeverBelowFloor(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	for q := Quality(0); q <= 5; q++ {
		for _, ef := range []float64{1.3, 1.5, 2.0, 2.5, 3.0} {
			newEF := calculateNewEaseFactor(ef, q, params)
			if newEF < params.MinEaseFactor-1e-9 {
				t.Errorf("quality %d on ease factor %v produced %v below floor", q, ef, newEF)
			}
		}
	}
}

func TestCalculateNewInterval(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name       string
		current    int
		repetition int
		ef         float64
		quality    Quality
		expected   int
	}{
		{
			name:       "failed review resets to relearn interval",
			current:    15,
			repetition: 0,
			ef:         2.1,
			quality:    QualityWrong,
			expected:   1,
		},
		{
			name:       "first successful repetition uses fixed interval",
			current:    0,
			repetition: 1,
			ef:         2.6,
			quality:    QualityPerfect,
			expected:   1,
		},
		{
			name:       "second successful repetition uses fixed interval",
			current:    1,
			repetition: 2,
			ef:         2.7,
			quality:    QualityPerfect,
			expected:   6,
		},
		{
			name:       "later repetitions grow by ease factor",
			current:    6,
			repetition: 3,
			ef:         2.5,
			quality:    QualityGood,
			expected:   15, // round(6 * 2.5)
		},
		{
			name:       "interval growth rounds to nearest day",
			current:    10,
			repetition: 4,
			ef:         2.36,
			quality:    QualityHard,
			expected:   24, // round(23.6)
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := calculateNewInterval(tc.current, tc.repetition, tc.ef, tc.quality, params)

			if got != tc.expected {
				t.Errorf("Expected interval %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestCalculateNextRecordFirstPass(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	record := &domain.SchedulingRecord{
		LearnerID:       uuid.New(),
		ItemID:          uuid.New(),
		EaseFactor:      2.5,
		RepetitionCount: 0,
		IntervalDays:    0,
		NextDueAt:       now,
	}

	next := calculateNextRecord(record, QualityPerfect, now, params)

	if math.Abs(next.EaseFactor-2.6) > 1e-9 {
		t.Errorf("Expected ease factor 2.6, got %v", next.EaseFactor)
	}
	if next.RepetitionCount != 1 {
		t.Errorf("Expected repetition count 1, got %d", next.RepetitionCount)
	}
	if next.IntervalDays != 1 {
		t.Errorf("Expected interval 1, got %d", next.IntervalDays)
	}
	if want := now.AddDate(0, 0, 1); !next.NextDueAt.Equal(want) {
		t.Errorf("Expected next due %v, got %v", want, next.NextDueAt)
	}
	if !next.LastReviewedAt.Equal(now) {
		t.Errorf("Expected last reviewed %v, got %v", now, next.LastReviewedAt)
	}
}

func TestCalculateNextRecordFailureResets(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	record := &domain.SchedulingRecord{
		LearnerID:       uuid.New(),
		ItemID:          uuid.New(),
		EaseFactor:      2.1,
		RepetitionCount: 3,
		IntervalDays:    15,
		NextDueAt:       now,
	}

	next := calculateNextRecord(record, QualityWrong, now, params)

	if next.RepetitionCount != 0 {
		t.Errorf("Expected repetition count reset to 0, got %d", next.RepetitionCount)
	}
	if next.IntervalDays != 1 {
		t.Errorf("Expected interval 1, got %d", next.IntervalDays)
	}
	if next.EaseFactor >= record.EaseFactor {
		t.Errorf("Expected ease factor below %v, got %v", record.EaseFactor, next.EaseFactor)
	}
	if next.EaseFactor < params.MinEaseFactor-1e-9 {
		t.Errorf("Ease factor %v fell below the floor", next.EaseFactor)
	}

	// Input record must be untouched.
	if record.RepetitionCount != 3 || record.IntervalDays != 15 {
		t.Error("calculateNextRecord modified its input")
	}
}

func TestIntervalMonotonicityAcrossPasses(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	record := &domain.SchedulingRecord{
		LearnerID:       uuid.New(),
		ItemID:          uuid.New(),
		EaseFactor:      2.5,
		RepetitionCount: 0,
		IntervalDays:    0,
		NextDueAt:       now,
	}

	prevInterval := 0
	for i := 0; i < 8; i++ {
		record = calculateNextRecord(record, QualityGood, now, params)
		if record.IntervalDays < prevInterval {
			t.Fatalf("interval shrank from %d to %d on pass %d", prevInterval, record.IntervalDays, i+1)
		}
		prevInterval = record.IntervalDays
		now = now.AddDate(0, 0, record.IntervalDays)
	}
}
