package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/staybook/staybook-go/internal/availability"
	"github.com/staybook/staybook-go/internal/model"
	"github.com/staybook/staybook-go/internal/repository"
)

// BookingService loads listing calendars and places bookings.
type BookingService struct {
	store     BookingStore
	listings  ListingStore
	session   Session
	logger    *slog.Logger
	minNights int
	maxNights int
	now       func() time.Time
}

// NewBookingService creates a new BookingService. minNights and maxNights are
// the stay bounds used when a calendar is loaded on demand.
func NewBookingService(store BookingStore, listings ListingStore, session Session, minNights, maxNights int, logger *slog.Logger) *BookingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingService{
		store:     store,
		listings:  listings,
		session:   session,
		logger:    logger,
		minNights: minNights,
		maxNights: maxNights,
		now:       time.Now,
	}
}

// SetClock overrides the clock used for calendars and review eligibility.
func (s *BookingService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Listing fetches a listing.
func (s *BookingService) Listing(ctx context.Context, id string) (*model.Listing, error) {
	if id == "" {
		return nil, ErrListingRequired
	}
	return s.listings.Get(ctx, id)
}

// LoadCalendar fetches the existing reservations of a listing and returns a
// Checker for it. Reservations with missing or unparsable dates are skipped.
func (s *BookingService) LoadCalendar(ctx context.Context, listingID string, minNights, maxNights int) (*availability.Checker, error) {
	if listingID == "" {
		return nil, ErrListingRequired
	}

	raw, err := s.store.ListByListing(ctx, listingID)
	if err != nil {
		s.logger.Warn("failed to load reservations", "listing", listingID, "error", err)
		return nil, fmt.Errorf("load calendar: %w", err)
	}

	reservations := availability.ParseReservations(raw, s.logger)
	return availability.NewChecker(reservations, minNights, maxNights, availability.WithClock(s.now)), nil
}

// Quote prices r at the listing's nightly rate. ok is false until r spans at
// least one night.
func (s *BookingService) Quote(listing *model.Listing, r availability.Range) (total availability.Total, ok bool) {
	if listing == nil {
		return availability.Total{}, false
	}
	nights := r.Nights()
	if nights <= 0 {
		return availability.Total{}, false
	}
	return availability.ComputeTotal(nights, listing.PricePerNight), true
}

// Reserve books r for guests. The session and the range are checked locally
// first and nothing is sent when either check fails. A nil checker loads the
// listing calendar with the default stay bounds.
func (s *BookingService) Reserve(ctx context.Context, listingID string, r availability.Range, guests int, checker *availability.Checker) (*model.Booking, error) {
	if !s.session.Authenticated() {
		return nil, ErrAuthRequired
	}
	if listingID == "" {
		return nil, ErrListingRequired
	}
	if guests < 1 {
		return nil, ErrInvalidGuests
	}

	if checker == nil {
		var err error
		checker, err = s.LoadCalendar(ctx, listingID, s.minNights, s.maxNights)
		if err != nil {
			return nil, err
		}
	}

	if result := checker.Validate(r); !result.Valid() {
		return nil, &ValidationError{
			Result:  result,
			Message: result.Message(checker.MinNights, checker.MaxNights),
		}
	}

	booking, err := s.store.Create(ctx, model.CreateBookingRequest{
		ListingID: listingID,
		StartDate: availability.Day(r.From),
		EndDate:   availability.Day(*r.To),
		Guests:    guests,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.logger.Info("booking rejected, dates taken", "listing", listingID)
		}
		return nil, err
	}

	s.logger.Info("booking created", "booking", booking.ID, "listing", listingID, "nights", r.Nights())
	return booking, nil
}

// MyBookings lists the bookings of the logged-in user.
func (s *BookingService) MyBookings(ctx context.Context) ([]model.Booking, error) {
	if !s.session.Authenticated() {
		return nil, ErrAuthRequired
	}
	return s.store.ListMine(ctx)
}

// Cancel cancels one of the logged-in user's bookings.
func (s *BookingService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	if !s.session.Authenticated() {
		return nil, ErrAuthRequired
	}
	return s.store.Cancel(ctx, id)
}

// CanLeaveReview reports whether a guest may review the stay: the booking is
// completed, or confirmed with a checkout strictly before today.
func CanLeaveReview(b model.Booking, today time.Time) bool {
	switch b.Status.Normalize() {
	case model.StatusCompleted:
		return true
	case model.StatusConfirmed:
		return !b.EndDate.IsZero() && availability.Day(b.EndDate.Time).Before(availability.Day(today))
	default:
		return false
	}
}

// CanLeaveReview reports whether b may be reviewed today.
func (s *BookingService) CanLeaveReview(b model.Booking) bool {
	return CanLeaveReview(b, s.now())
}
