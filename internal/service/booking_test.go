package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/staybook/staybook-go/internal/availability"
	"github.com/staybook/staybook-go/internal/model"
	"github.com/staybook/staybook-go/internal/repository"
)

func newTestBookingService(store BookingStore, authenticated bool) *BookingService {
	svc := NewBookingService(store, &mockListingStore{}, staticSession(authenticated), 2, 20, quietLogger())
	svc.SetClock(fixedNow("2024-06-01"))
	return svc
}

func TestLoadCalendar(t *testing.T) {
	store := &mockBookingStore{}
	store.On("ListByListing", mock.Anything, "l-1").Return([]model.RawReservation{
		{StartDate: "2024-06-10", EndDate: "2024-06-14"},
		{CheckIn: "broken"},
	}, nil)

	svc := newTestBookingService(store, false)

	checker, err := svc.LoadCalendar(context.Background(), "l-1", 2, 20)
	require.NoError(t, err)

	assert.Len(t, checker.Reservations(), 1)
	assert.Equal(t, 4, checker.Blocked().Len())
	assert.True(t, checker.Today().Equal(day("2024-06-01")))
	store.AssertExpectations(t)
}

func TestLoadCalendarError(t *testing.T) {
	store := &mockBookingStore{}
	store.On("ListByListing", mock.Anything, "l-1").Return(nil, errors.New("connection refused"))

	_, err := newTestBookingService(store, false).LoadCalendar(context.Background(), "l-1", 1, 20)
	assert.Error(t, err)
}

func TestQuote(t *testing.T) {
	svc := newTestBookingService(&mockBookingStore{}, false)
	listing := &model.Listing{ID: "l-1", PricePerNight: 100}

	total, ok := svc.Quote(listing, availability.NewRange(day("2024-06-01"), day("2024-06-08")))
	require.True(t, ok)
	assert.Equal(t, availability.Total{Nights: 7, Subtotal: 700, ServiceFee: 70, Total: 770}, total)

	_, ok = svc.Quote(listing, availability.Range{From: day("2024-06-01")})
	assert.False(t, ok)

	_, ok = svc.Quote(nil, availability.NewRange(day("2024-06-01"), day("2024-06-08")))
	assert.False(t, ok)
}

func TestReserveRequiresSession(t *testing.T) {
	store := &mockBookingStore{}
	svc := newTestBookingService(store, false)

	_, err := svc.Reserve(context.Background(), "l-1", availability.NewRange(day("2024-06-05"), day("2024-06-08")), 2, nil)
	assert.ErrorIs(t, err, ErrAuthRequired)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "ListByListing", mock.Anything, mock.Anything)
}

func TestReserveRejectsInvalidRangeLocally(t *testing.T) {
	checker := availability.NewChecker(
		[]availability.Interval{{Start: day("2024-06-10"), End: day("2024-06-14")}},
		2, 20,
		availability.WithClock(fixedNow("2024-06-01")),
	)

	tests := []struct {
		name string
		r    availability.Range
		want availability.Result
	}{
		{"too short", availability.NewRange(day("2024-06-02"), day("2024-06-03")), availability.TooShort},
		{"too long", availability.NewRange(day("2024-06-15"), day("2024-07-15")), availability.TooLong},
		{"overlap", availability.NewRange(day("2024-06-08"), day("2024-06-11")), availability.Overlap},
		{"incomplete", availability.Range{From: day("2024-06-02")}, availability.Incomplete},
		{"past", availability.NewRange(day("2024-05-20"), day("2024-05-25")), availability.PastDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockBookingStore{}
			svc := newTestBookingService(store, true)

			_, err := svc.Reserve(context.Background(), "l-1", tt.r, 2, checker)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr), "error = %v", err)
			assert.Equal(t, tt.want, vErr.Result)
			assert.NotEmpty(t, vErr.Message)
			assert.ErrorIs(t, err, ErrInvalidRange)
			store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestReserveInvalidGuests(t *testing.T) {
	store := &mockBookingStore{}
	_, err := newTestBookingService(store, true).Reserve(context.Background(), "l-1", availability.NewRange(day("2024-06-05"), day("2024-06-08")), 0, nil)
	assert.ErrorIs(t, err, ErrInvalidGuests)
}

func TestReserve(t *testing.T) {
	store := &mockBookingStore{}
	store.On("ListByListing", mock.Anything, "l-1").Return([]model.RawReservation{
		{StartDate: "2024-06-10", EndDate: "2024-06-14"},
	}, nil)
	store.On("Create", mock.Anything, model.CreateBookingRequest{
		ListingID: "l-1",
		StartDate: day("2024-06-14"),
		EndDate:   day("2024-06-17"),
		Guests:    2,
	}).Return(&model.Booking{ID: "b-1", Status: model.StatusPending}, nil)

	svc := newTestBookingService(store, true)

	booking, err := svc.Reserve(context.Background(), "l-1", availability.NewRange(day("2024-06-14"), day("2024-06-17")), 2, nil)
	require.NoError(t, err)

	assert.Equal(t, "b-1", booking.ID)
	store.AssertExpectations(t)
}

func TestReserveConflict(t *testing.T) {
	store := &mockBookingStore{}
	store.On("Create", mock.Anything, mock.Anything).Return(nil, &repository.APIError{Status: 409, Message: "taken"})

	checker := availability.NewChecker(nil, 1, 20, availability.WithClock(fixedNow("2024-06-01")))
	_, err := newTestBookingService(store, true).Reserve(context.Background(), "l-1", availability.NewRange(day("2024-06-05"), day("2024-06-08")), 1, checker)

	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestMyBookingsAndCancel(t *testing.T) {
	store := &mockBookingStore{}
	store.On("ListMine", mock.Anything).Return([]model.Booking{{ID: "b-1"}}, nil)
	store.On("Cancel", mock.Anything, "b-1").Return(&model.Booking{ID: "b-1", Status: model.StatusCancelled}, nil)

	svc := newTestBookingService(store, true)

	bookings, err := svc.MyBookings(context.Background())
	require.NoError(t, err)
	assert.Len(t, bookings, 1)

	cancelled, err := svc.Cancel(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)

	anon := newTestBookingService(store, false)
	_, err = anon.MyBookings(context.Background())
	assert.ErrorIs(t, err, ErrAuthRequired)
	_, err = anon.Cancel(context.Background(), "b-1")
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestCanLeaveReview(t *testing.T) {
	today := day("2024-06-15")
	booking := func(status model.BookingStatus, checkout string) model.Booking {
		b := model.Booking{Status: status}
		if checkout != "" {
			b.EndDate = model.Date{Time: day(checkout)}
		}
		return b
	}

	tests := []struct {
		name string
		b    model.Booking
		want bool
	}{
		{"completed", booking(model.StatusCompleted, ""), true},
		{"completed uppercase", booking("COMPLETED", "2024-06-20"), true},
		{"confirmed past checkout", booking(model.StatusConfirmed, "2024-06-14"), true},
		{"confirmed checkout today", booking(model.StatusConfirmed, "2024-06-15"), false},
		{"confirmed future", booking(model.StatusConfirmed, "2024-06-20"), false},
		{"confirmed no checkout", booking(model.StatusConfirmed, ""), false},
		{"pending", booking(model.StatusPending, "2024-06-01"), false},
		{"cancelled", booking(model.StatusCancelled, "2024-06-01"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanLeaveReview(tt.b, today); got != tt.want {
				t.Errorf("CanLeaveReview() = %v, want %v", got, tt.want)
			}
		})
	}
}
