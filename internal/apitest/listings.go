package apitest

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/staybook/staybook-go/internal/model"
)

// AddListing stores a listing. An empty ID is assigned.
func (s *Server) AddListing(l model.Listing) model.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	stored := l
	stored.Reviews = append([]model.Review(nil), l.Reviews...)
	s.listings[l.ID] = &stored
	return l
}

// AddReservation stores an existing reservation for a listing exactly as it
// will be served, so malformed and alternately spelled entries can be seeded.
func (s *Server) AddReservation(listingID string, raw model.RawReservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations[listingID] = append(s.reservations[listingID], raw)
}

// handleGetListing handles GET /api/listings/{id} requests.
func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	l, ok := s.listings[chi.URLParam(r, "id")]
	var resp model.Listing
	if ok {
		resp = *l
		resp.Reviews = append([]model.Review(nil), l.Reviews...)
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse("listing not found"))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListFavorites handles GET /api/listings/favorites requests.
func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	s.mu.Lock()
	listings := make([]model.Listing, 0, len(s.favorites[userID]))
	for id := range s.favorites[userID] {
		if l, ok := s.listings[id]; ok {
			listings = append(listings, *l)
		}
	}
	s.mu.Unlock()

	sort.Slice(listings, func(i, j int) bool { return listings[i].ID < listings[j].ID })
	writeJSON(w, http.StatusOK, listings)
}

// handleToggleFavorite handles POST /api/listings/favorites requests.
func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.FavoriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.listings[req.ListingID]; !ok {
		writeJSON(w, http.StatusNotFound, errorResponse("listing not found"))
		return
	}

	favs := s.favorites[userID]
	if favs == nil {
		favs = make(map[string]struct{})
		s.favorites[userID] = favs
	}

	_, favorite := favs[req.ListingID]
	if favorite {
		delete(favs, req.ListingID)
	} else {
		favs[req.ListingID] = struct{}{}
	}

	writeJSON(w, http.StatusOK, model.FavoriteResponse{ListingID: req.ListingID, Favorite: !favorite})
}

// handleCreateReview handles POST /api/reviews requests.
func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.CreateReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Comment = strings.TrimSpace(req.Comment)
	if req.Rating < 1 || req.Rating > 5 {
		writeJSON(w, http.StatusBadRequest, errorResponse("rating must be between 1 and 5"))
		return
	}
	if req.Comment == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse("comment is required"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[req.ListingID]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse("listing not found"))
		return
	}

	author := s.users[userID].User
	review := model.Review{
		ID:        uuid.NewString(),
		ListingID: req.ListingID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
		User:      &author,
	}
	l.Reviews = append(l.Reviews, review)

	writeJSON(w, http.StatusCreated, review)
}
