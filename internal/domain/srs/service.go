package srs

import (
	"errors"
	"time"

	"github.com/lingora/practice-api/internal/domain"
)

// Common errors
var (
	ErrNilRecord      = errors.New("scheduling record cannot be nil")
	ErrInvalidQuality = errors.New("quality must be between 0 and 5")
)

// Service defines the interface for SM-2 scheduling operations.
type Service interface {
	// Update computes the successor scheduling record for a graded
	// review. The input record is not modified.
	Update(
		record *domain.SchedulingRecord,
		quality Quality,
		now time.Time,
	) (*domain.SchedulingRecord, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates an SM-2 service with standard parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates an SM-2 service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// Update implements the Service interface.
func (s *defaultService) Update(
	record *domain.SchedulingRecord,
	quality Quality,
	now time.Time,
) (*domain.SchedulingRecord, error) {
	if record == nil {
		return nil, ErrNilRecord
	}

	if !quality.IsValid() {
		return nil, ErrInvalidQuality
	}

	return calculateNextRecord(record, quality, now, s.params), nil
}
