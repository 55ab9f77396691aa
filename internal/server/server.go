// Package server exposes the REST API: account management, listing
// browsing and the ranked-match endpoints.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Liancohen0104/Rentmate/internal/auth"
	"github.com/Liancohen0104/Rentmate/internal/config"
	"github.com/Liancohen0104/Rentmate/internal/match"
	"github.com/Liancohen0104/Rentmate/internal/store"
	"github.com/Liancohen0104/Rentmate/pkg/geocode"
)

// Server wires the API handlers to their collaborators.
type Server struct {
	store    store.Store
	auth     *auth.Manager
	pipeline *match.Pipeline
	geocoder *geocode.Geocoder // nil when no API key configured
	matchCfg config.MatchConfig
}

// New creates a Server. geocoder may be nil; preference updates then
// skip coordinate resolution.
func New(st store.Store, authMgr *auth.Manager, pipeline *match.Pipeline, geocoder *geocode.Geocoder, matchCfg config.MatchConfig) *Server {
	return &Server{
		store:    st,
		auth:     authMgr,
		pipeline: pipeline,
		geocoder: geocoder,
		matchCfg: matchCfg,
	}
}

// Router builds the chi routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/users/register", s.handleRegister)
		r.Post("/users/login", s.handleLogin)
		r.Post("/users/forgot-password", s.handleForgotPassword)
		r.Post("/users/reset-password", s.handleResetPassword)

		r.Get("/apartments", s.handleListApartments)
		r.Get("/apartments/search", s.handleSearchApartments)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Middleware)
			r.Get("/users/me", s.handleGetMe)
			r.Put("/users/me", s.handleUpdateMe)
			r.Put("/users/me/preferences", s.handleUpdatePreferences)
			r.Delete("/users/me", s.handleDeleteMe)
			r.Get("/match", s.handleMatch)
			r.Get("/match/search", s.handleMatchSearch)
		})
	})

	return r
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("server: encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
