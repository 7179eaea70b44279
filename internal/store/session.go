package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/lingora/practice-api/internal/domain"
)

// PracticeSessionStore defines the interface for practice session
// persistence.
type PracticeSessionStore interface {
	// Create saves a new practice session.
	// Returns ErrDuplicate if the ID already exists.
	Create(ctx context.Context, session *domain.PracticeSession) error

	// GetByID retrieves a practice session by its ID.
	// Returns ErrSessionNotFound if the session does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error)

	// Update persists the session's execution state and results using
	// an optimistic-concurrency check: the write only applies if the
	// stored version matches session.Version, and on success the
	// session's Version is incremented in place. Returns ErrConflict
	// if the stored session was modified since it was read, and
	// ErrSessionNotFound if it does not exist.
	Update(ctx context.Context, session *domain.PracticeSession) error

	// WithTx returns a PracticeSessionStore bound to the given transaction.
	WithTx(tx *sql.Tx) PracticeSessionStore
}
