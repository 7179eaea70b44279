package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lingora/practice-api/internal/domain"
	"github.com/lingora/practice-api/internal/store"
)

// SessionStore implements store.PracticeSessionStore on a SQL database.
// Configuration, execution state, and results are stored as JSON
// columns; the version column carries the optimistic-concurrency check.
type SessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSessionStore creates a SQL implementation of the
// PracticeSessionStore interface. If logger is nil, the default logger
// is used.
func NewSessionStore(db store.DBTX, logger *slog.Logger) *SessionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

// Ensure SessionStore implements store.PracticeSessionStore.
var _ store.PracticeSessionStore = (*SessionStore)(nil)

// WithTx implements store.PracticeSessionStore.WithTx.
func (s *SessionStore) WithTx(tx *sql.Tx) store.PracticeSessionStore {
	return &SessionStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.PracticeSessionStore.Create.
func (s *SessionStore) Create(ctx context.Context, session *domain.PracticeSession) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	configJSON, executionJSON, resultsJSON, err := marshalSession(session)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO practice_sessions
			(id, learner_id, config, execution, results, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = s.db.ExecContext(ctx, query,
		session.ID,
		session.LearnerID,
		configJSON,
		executionJSON,
		resultsJSON,
		session.Version,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		s.logger.DebugContext(ctx, "failed to insert practice session",
			slog.String("session_id", session.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return nil
}

// GetByID implements store.PracticeSessionStore.GetByID.
func (s *SessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error) {
	query := `
		SELECT id, learner_id, config, execution, results, version, created_at, updated_at
		FROM practice_sessions
		WHERE id = $1`

	session, err := scanSession(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if store.IsNotFoundError(MapError(err)) {
			return nil, store.ErrSessionNotFound
		}
		return nil, MapError(err)
	}

	return session, nil
}

// Update implements store.PracticeSessionStore.Update. The write only
// applies when the stored version matches session.Version; on success
// the session's Version is incremented in place to match the store.
func (s *SessionStore) Update(ctx context.Context, session *domain.PracticeSession) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, executionJSON, resultsJSON, err := marshalSession(session)
	if err != nil {
		return err
	}

	query := `
		UPDATE practice_sessions
		SET execution = $1, results = $2, version = version + 1, updated_at = $3
		WHERE id = $4 AND version = $5`

	result, err := s.db.ExecContext(ctx, query,
		executionJSON,
		resultsJSON,
		session.UpdatedAt,
		session.ID,
		session.Version,
	)
	if err != nil {
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "practice session"); err != nil {
		// Zero affected rows means either the session is gone or
		// someone else updated it first; look again to tell which.
		var probe int
		probeErr := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM practice_sessions WHERE id = $1`, session.ID).Scan(&probe)
		if probeErr == nil {
			s.logger.WarnContext(ctx, "practice session version conflict",
				slog.String("session_id", session.ID.String()),
				slog.Int("expected_version", session.Version))
			return fmt.Errorf("%w: practice session %s", store.ErrConflict, session.ID)
		}
		if errors.Is(probeErr, sql.ErrNoRows) {
			return store.ErrSessionNotFound
		}
		return MapError(probeErr)
	}

	session.Version++
	return nil
}

func marshalSession(
	session *domain.PracticeSession,
) (configJSON, executionJSON string, resultsJSON sql.NullString, err error) {
	configBytes, err := json.Marshal(session.Config)
	if err != nil {
		return "", "", sql.NullString{}, fmt.Errorf("failed to marshal session config: %w", err)
	}

	executionBytes, err := json.Marshal(session.Execution)
	if err != nil {
		return "", "", sql.NullString{}, fmt.Errorf("failed to marshal session execution: %w", err)
	}

	if session.Results != nil {
		resultsBytes, marshalErr := json.Marshal(session.Results)
		if marshalErr != nil {
			return "", "", sql.NullString{}, fmt.Errorf(
				"failed to marshal session results: %w", marshalErr)
		}
		resultsJSON = sql.NullString{String: string(resultsBytes), Valid: true}
	}

	return string(configBytes), string(executionBytes), resultsJSON, nil
}

func scanSession(row rowScanner) (*domain.PracticeSession, error) {
	var (
		session       domain.PracticeSession
		configJSON    string
		executionJSON string
		resultsJSON   sql.NullString
	)

	err := row.Scan(
		&session.ID,
		&session.LearnerID,
		&configJSON,
		&executionJSON,
		&resultsJSON,
		&session.Version,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(configJSON), &session.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session config: %w", err)
	}
	if err := json.Unmarshal([]byte(executionJSON), &session.Execution); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session execution: %w", err)
	}
	if resultsJSON.Valid {
		var results domain.SessionResults
		if err := json.Unmarshal([]byte(resultsJSON.String), &results); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session results: %w", err)
		}
		session.Results = &results
	}

	return &session, nil
}
