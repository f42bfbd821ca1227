package model

import (
	"encoding/json"
	"strings"
	"time"
)

// BookingStatus is the lifecycle state of a booking. The API is not
// consistent about case, so compare through Normalize.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// Normalize lowercases the status and maps an empty status to pending.
func (s BookingStatus) Normalize() BookingStatus {
	n := BookingStatus(strings.ToLower(strings.TrimSpace(string(s))))
	if n == "" {
		return StatusPending
	}
	return n
}

// Booking represents a booking record as returned by the API. Listing is
// set when the API embeds the booked listing; ListingID is then filled from
// it if the flat field is absent.
type Booking struct {
	ID         string        `json:"id"`
	ListingID  string        `json:"listingId"`
	Listing    *Listing      `json:"listing,omitempty"`
	StartDate  Date          `json:"startDate"`
	EndDate    Date          `json:"endDate"`
	Guests     int           `json:"guests"`
	Status     BookingStatus `json:"status"`
	TotalPrice int64         `json:"totalPrice,omitempty"`
	CreatedAt  Date          `json:"createdAt"`
}

func (b *Booking) UnmarshalJSON(data []byte) error {
	type plain Booking
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.ListingID == "" && p.Listing != nil {
		p.ListingID = p.Listing.ID
	}
	*b = Booking(p)
	return nil
}

// CreateBookingRequest represents a booking submission.
type CreateBookingRequest struct {
	ListingID string    `json:"listingId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Guests    int       `json:"guests"`
}

// RawReservation is an existing reservation for a listing as loosely encoded
// by the API. Any of three field spellings may carry the bounds, and any field
// may be missing or of the wrong type; decoding never fails because of it.
type RawReservation struct {
	StartDate  string `json:"startDate,omitempty"`
	EndDate    string `json:"endDate,omitempty"`
	CheckIn    string `json:"checkIn,omitempty"`
	CheckOut   string `json:"checkOut,omitempty"`
	FechaDesde string `json:"fecha_desde,omitempty"`
	FechaHasta string `json:"fecha_hasta,omitempty"`
}

func (r *RawReservation) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		// Not an object: leave it empty and let the caller skip it.
		*r = RawReservation{}
		return nil
	}
	str := func(key string) string {
		var s string
		if raw, ok := fields[key]; ok {
			_ = json.Unmarshal(raw, &s)
		}
		return s
	}
	*r = RawReservation{
		StartDate:  str("startDate"),
		EndDate:    str("endDate"),
		CheckIn:    str("checkIn"),
		CheckOut:   str("checkOut"),
		FechaDesde: str("fecha_desde"),
		FechaHasta: str("fecha_hasta"),
	}
	return nil
}

// Bounds returns the first non-empty start and end spelling.
func (r RawReservation) Bounds() (start, end string) {
	return firstNonEmpty(r.FechaDesde, r.StartDate, r.CheckIn),
		firstNonEmpty(r.FechaHasta, r.EndDate, r.CheckOut)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
