package apitest

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/staybook/staybook-go/internal/availability"
	"github.com/staybook/staybook-go/internal/model"
)

const dateLayout = "2006-01-02"

type bookingRequest struct {
	ListingID string     `json:"listingId"`
	StartDate model.Date `json:"startDate"`
	EndDate   model.Date `json:"endDate"`
	Guests    int        `json:"guests"`
}

// rawReservationsLocked returns the seeded reservations of a listing plus its
// active bookings. Callers hold s.mu.
func (s *Server) rawReservationsLocked(listingID string) []model.RawReservation {
	raw := append([]model.RawReservation(nil), s.reservations[listingID]...)

	ids := make([]string, 0)
	for id, b := range s.bookings {
		if b.ListingID == listingID && b.Status != model.StatusCancelled {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	for _, id := range ids {
		b := s.bookings[id]
		raw = append(raw, model.RawReservation{
			StartDate: b.StartDate.Format(dateLayout),
			EndDate:   b.EndDate.Format(dateLayout),
		})
	}
	return raw
}

// handleListingBookings handles GET /api/listings/{id}/bookings requests.
func (s *Server) handleListingBookings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, ok := s.listings[id]
	raw := s.rawReservationsLocked(id)
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse("listing not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": raw})
}

// handleCreateBooking handles POST /api/bookings requests.
func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req bookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	start, end := availability.Day(req.StartDate.Time), availability.Day(req.EndDate.Time)
	switch {
	case req.StartDate.IsZero() || req.EndDate.IsZero():
		writeJSON(w, http.StatusBadRequest, errorResponse("startDate and endDate are required"))
		return
	case !end.After(start):
		writeJSON(w, http.StatusBadRequest, errorResponse("endDate must be after startDate"))
		return
	case start.Before(availability.Day(time.Now())):
		writeJSON(w, http.StatusBadRequest, errorResponse("startDate cannot be in the past"))
		return
	case req.Guests < 1:
		writeJSON(w, http.StatusBadRequest, errorResponse("at least one guest is required"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[req.ListingID]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse("listing not found"))
		return
	}

	for _, in := range availability.ParseReservations(s.rawReservationsLocked(req.ListingID), s.opts.Logger) {
		if availability.Overlaps(start, end, in.Start, in.End) {
			writeJSON(w, http.StatusConflict, errorResponse("the selected dates are not available"))
			return
		}
	}

	nights := availability.DaysBetween(start, end)
	b := &booking{
		Booking: model.Booking{
			ID:         uuid.NewString(),
			ListingID:  l.ID,
			Listing:    &model.Listing{ID: l.ID, Title: l.Title, City: l.City, PricePerNight: l.PricePerNight},
			StartDate:  model.Date{Time: start},
			EndDate:    model.Date{Time: end},
			Guests:     req.Guests,
			Status:     model.StatusPending,
			TotalPrice: availability.ComputeTotal(nights, l.PricePerNight).Total,
			CreatedAt:  model.Date{Time: time.Now().UTC()},
		},
		userID: userID,
	}
	s.bookings[b.ID] = b

	writeJSON(w, http.StatusCreated, b.Booking)
}

// handleMyBookings handles GET /api/bookings requests.
func (s *Server) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	s.mu.Lock()
	mine := make([]model.Booking, 0)
	for _, b := range s.bookings {
		if b.userID == userID {
			mine = append(mine, b.Booking)
		}
	}
	s.mu.Unlock()

	sort.Slice(mine, func(i, j int) bool { return mine[i].StartDate.Before(mine[j].StartDate.Time) })
	writeJSON(w, http.StatusOK, map[string]any{"data": mine})
}

// handleCancelBooking handles PATCH /api/bookings/{id}/cancel requests.
func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[chi.URLParam(r, "id")]
	if !ok || b.userID != userID {
		writeJSON(w, http.StatusNotFound, errorResponse("booking not found"))
		return
	}
	if b.Status == model.StatusCompleted {
		writeJSON(w, http.StatusConflict, errorResponse("completed bookings cannot be cancelled"))
		return
	}

	b.Status = model.StatusCancelled
	writeJSON(w, http.StatusOK, b.Booking)
}

// SetBookingStatus changes the status of a booking, e.g. to confirm it.
func (s *Server) SetBookingStatus(id string, status model.BookingStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return false
	}
	b.Status = status
	return true
}
