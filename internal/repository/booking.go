package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/staybook/staybook-go/internal/model"
)

// BookingRepository accesses bookings.
type BookingRepository struct {
	client *Client
}

// NewBookingRepository creates a new BookingRepository.
func NewBookingRepository(client *Client) *BookingRepository {
	return &BookingRepository{client: client}
}

// ListByListing handles GET /listings/{id}/bookings. The API answers with a
// bare array or wraps it in a "bookings" or "data" field; all three are
// accepted, anything else yields no reservations.
func (r *BookingRepository) ListByListing(ctx context.Context, listingID string) ([]model.RawReservation, error) {
	var raw json.RawMessage
	if err := r.client.do(ctx, http.MethodGet, "/listings/"+escape(listingID)+"/bookings", nil, &raw); err != nil {
		return nil, err
	}
	return decodeReservations(raw), nil
}

// Create handles POST /bookings.
func (r *BookingRepository) Create(ctx context.Context, req model.CreateBookingRequest) (*model.Booking, error) {
	var booking model.Booking
	if err := r.client.do(ctx, http.MethodPost, "/bookings", req, &booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	return &booking, nil
}

// ListMine handles GET /bookings for the authenticated user. Entries that do
// not decode as a booking are skipped so one bad record does not hide the rest.
func (r *BookingRepository) ListMine(ctx context.Context) ([]model.Booking, error) {
	var raw json.RawMessage
	if err := r.client.do(ctx, http.MethodGet, "/bookings", nil, &raw); err != nil {
		return nil, err
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(unwrap(raw), &entries); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}

	bookings := make([]model.Booking, 0, len(entries))
	for _, entry := range entries {
		var b model.Booking
		if err := json.Unmarshal(entry, &b); err != nil || b.ID == "" {
			continue
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

// Cancel handles PATCH /bookings/{id}/cancel.
func (r *BookingRepository) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	var booking model.Booking
	if err := r.client.do(ctx, http.MethodPatch, "/bookings/"+escape(id)+"/cancel", nil, &booking); err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}
	return &booking, nil
}

func decodeReservations(raw json.RawMessage) []model.RawReservation {
	var out []model.RawReservation
	if err := json.Unmarshal(unwrap(raw), &out); err != nil {
		return nil
	}
	return out
}

// unwrap returns the array held by a {"bookings": [...]} or {"data": [...]}
// envelope, or raw itself.
func unwrap(raw json.RawMessage) json.RawMessage {
	var envelope struct {
		Bookings json.RawMessage `json:"bookings"`
		Data     json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return raw
	}
	if len(envelope.Bookings) > 0 {
		return envelope.Bookings
	}
	if len(envelope.Data) > 0 {
		return envelope.Data
	}
	return raw
}
