package server

import (
	"net/http"

	"github.com/Liancohen0104/Rentmate/internal/match"
	"github.com/Liancohen0104/Rentmate/internal/model"
)

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	listings, err := s.store.ListListings(r.Context())
	if err != nil {
		s.internalError(w, "load candidates", err)
		return
	}

	// Candidates for the default match come from the user's area.
	candidates := match.WithinRadius(user.Preferences, listings, s.matchCfg.RadiusKM)
	s.rank(w, r, user, candidates)
}

// handleMatchSearch sources candidates from the attribute filter alone.
// The caller already narrowed the set, so no distance filtering happens
// here; searching a city far from the stored coordinate still works.
func (s *Server) handleMatchSearch(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	filter, err := parseListingFilter(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	listings, err := s.store.SearchListings(r.Context(), filter)
	if err != nil {
		s.internalError(w, "search candidates", err)
		return
	}

	s.rank(w, r, user, listings)
}

// rank runs the candidates through the scoring pipeline. The pipeline
// always yields a result, so from here on every outcome is a 200 and
// the meta block tells the client how the scores were produced.
func (s *Server) rank(w http.ResponseWriter, r *http.Request, user *model.User, candidates []model.Listing) {
	maxResults := s.matchCfg.MaxResults
	if maxResults <= 0 {
		maxResults = match.DefaultMaxResults
	}

	result := s.pipeline.Rank(r.Context(), user.Preferences, candidates, maxResults)
	respondJSON(w, http.StatusOK, result)
}
