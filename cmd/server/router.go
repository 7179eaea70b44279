package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/lingora/practice-api/internal/api"
	apimiddleware "github.com/lingora/practice-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	sessionHandler := api.NewSessionHandler(app.practiceService, app.logger)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", sessionHandler.CreateSession)
				r.Get("/{id}", sessionHandler.GetSession)
				r.Post("/{id}/start", sessionHandler.StartSession)
				r.Post("/{id}/answer", sessionHandler.SubmitAnswer)
				r.Post("/{id}/skip", sessionHandler.SkipTask)
				r.Post("/{id}/advance", sessionHandler.AdvanceTask)
				r.Post("/{id}/hint", sessionHandler.ToggleHint)
				r.Post("/{id}/cancel", sessionHandler.CancelSession)
				r.Post("/{id}/finish", sessionHandler.FinishSession)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
