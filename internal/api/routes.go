package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type contextKey string

const userIDKey contextKey = "user_id"

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// CORS - browser extension surfaces call from extension origins
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check (no identity required)
	r.Get("/health", h.HealthCheck)

	// API routes (require caller identity)
	r.Route("/api", func(r chi.Router) {
		r.Use(requireUserID)

		r.Route("/import", func(r chi.Router) {
			r.Post("/", h.StartImport)
			r.Get("/{runID}", h.GetImportStatus)
		})

		r.Route("/workspaces", func(r chi.Router) {
			r.Get("/", h.ListWorkspaces)
			r.Get("/{workspaceID}/groups", h.GetWorkspaceGroups)
			r.Get("/{workspaceID}/index", h.GetWorkspaceIndex)
		})
	})

	return r
}

// requireUserID extracts the caller identity from the X-User-ID header.
// The extension surfaces authenticate upstream; the header is the trusted
// identity they forward.
func requireUserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"missing X-User-ID header"}`))
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}
