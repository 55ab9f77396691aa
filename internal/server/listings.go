package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Liancohen0104/Rentmate/internal/store"
)

const defaultListLimit = 100

func (s *Server) handleListApartments(w http.ResponseWriter, r *http.Request) {
	listings, err := s.store.ListListings(r.Context())
	if err != nil {
		s.internalError(w, "list listings", err)
		return
	}
	respondJSON(w, http.StatusOK, listings)
}

func (s *Server) handleSearchApartments(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListingFilter(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	listings, err := s.store.SearchListings(r.Context(), filter)
	if err != nil {
		s.internalError(w, "search listings", err)
		return
	}
	respondJSON(w, http.StatusOK, listings)
}

// parseListingFilter maps query parameters onto a store filter. Unknown
// parameters are ignored; malformed numeric values are reported.
func parseListingFilter(q url.Values) (store.ListingFilter, error) {
	filter := store.ListingFilter{
		City:         strings.TrimSpace(q.Get("city")),
		Neighborhood: strings.TrimSpace(q.Get("neighborhood")),
		PropertyType: strings.TrimSpace(q.Get("propertyType")),
		Limit:        queryLimit(q),
	}

	var err error
	if filter.MinPrice, err = queryInt(q, "minPrice"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = queryInt(q, "maxPrice"); err != nil {
		return filter, err
	}
	if filter.MinSize, err = queryInt(q, "minSquareMeter"); err != nil {
		return filter, err
	}
	if filter.MaxSize, err = queryInt(q, "maxSquareMeter"); err != nil {
		return filter, err
	}
	if filter.MinFloor, err = queryInt(q, "minFloor"); err != nil {
		return filter, err
	}
	if filter.MaxFloor, err = queryInt(q, "maxFloor"); err != nil {
		return filter, err
	}
	if filter.MinRooms, err = queryFloat(q, "minRooms"); err != nil {
		return filter, err
	}
	if filter.MaxRooms, err = queryFloat(q, "maxRooms"); err != nil {
		return filter, err
	}
	return filter, nil
}

func queryLimit(q url.Values) int {
	raw := q.Get("limit")
	if raw == "" {
		return defaultListLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultListLimit
	}
	if n > 500 {
		return 500
	}
	return n
}

func queryInt(q url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &badParamError{key}
	}
	return &n, nil
}

func queryFloat(q url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &badParamError{key}
	}
	return &f, nil
}

type badParamError struct {
	key string
}

func (e *badParamError) Error() string {
	return "invalid numeric value for " + e.key
}
