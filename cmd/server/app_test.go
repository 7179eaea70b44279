package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingora/practice-api/internal/config"
	"github.com/lingora/practice-api/internal/platform/database"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		Server: config.ServerConfig{
			Port:            8080,
			LogLevel:        "info",
			ShutdownTimeout: 1,
		},
		Database: config.DatabaseConfig{
			URL: filepath.Join(t.TempDir(), "practice.db"),
		},
		Auth: config.AuthConfig{
			JWTSecret: "test-secret-thats-at-least-32-characters",
		},
		Task: config.TaskConfig{
			QueueSize:   16,
			WorkerCount: 1,
			MaxRetries:  3,
		},
	}
}

// newTestApplication migrates a fresh SQLite database and wires the
// full application over it.
func newTestApplication(t *testing.T) *application {
	t.Helper()

	cfg := testConfig(t)
	ctx := context.Background()

	require.NoError(t, runMigrations(ctx, cfg, "up"))

	db, err := database.Open(ctx, cfg.Database.URL)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := newApplication(cfg, logger, db)
	require.NoError(t, err)
	t.Cleanup(app.cleanup)

	return app
}

func TestMigrationsAreIdempotent(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	require.NoError(t, runMigrations(ctx, cfg, "up"))
	require.NoError(t, runMigrations(ctx, cfg, "up"))
	require.NoError(t, runMigrations(ctx, cfg, "status"))
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApplication(t)
	router := app.setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestSessionRoutesRequireAuth(t *testing.T) {
	app := newTestApplication(t)
	router := app.setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateSessionThroughFullStack(t *testing.T) {
	app := newTestApplication(t)
	router := app.setupRouter()

	learnerID := uuid.New()
	token, err := app.jwtService.GenerateToken(context.Background(), learnerID)
	require.NoError(t, err)

	// An empty pool still yields a session, just one with no tasks.
	body, err := json.Marshal(map[string]any{
		"topic_id":     uuid.New(),
		"target_count": 5,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(string(body)))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ID        uuid.UUID `json:"id"`
		Status    string    `json:"status"`
		TaskCount int       `json:"task_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.Equal(t, "not_started", resp.Status)
	assert.Zero(t, resp.TaskCount)
}
