package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/staybook/staybook-go/internal/model"
)

type staticSession bool

func (s staticSession) Authenticated() bool { return bool(s) }

type mockBookingStore struct {
	mock.Mock
}

func (m *mockBookingStore) ListByListing(ctx context.Context, listingID string) ([]model.RawReservation, error) {
	args := m.Called(ctx, listingID)
	raw, _ := args.Get(0).([]model.RawReservation)
	return raw, args.Error(1)
}

func (m *mockBookingStore) Create(ctx context.Context, req model.CreateBookingRequest) (*model.Booking, error) {
	args := m.Called(ctx, req)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

func (m *mockBookingStore) ListMine(ctx context.Context) ([]model.Booking, error) {
	args := m.Called(ctx)
	b, _ := args.Get(0).([]model.Booking)
	return b, args.Error(1)
}

func (m *mockBookingStore) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

type mockListingStore struct {
	mock.Mock
}

func (m *mockListingStore) Get(ctx context.Context, id string) (*model.Listing, error) {
	args := m.Called(ctx, id)
	l, _ := args.Get(0).(*model.Listing)
	return l, args.Error(1)
}

func (m *mockListingStore) Favorites(ctx context.Context) ([]model.Listing, error) {
	args := m.Called(ctx)
	l, _ := args.Get(0).([]model.Listing)
	return l, args.Error(1)
}

func (m *mockListingStore) ToggleFavorite(ctx context.Context, listingID string) (*model.FavoriteResponse, error) {
	args := m.Called(ctx, listingID)
	r, _ := args.Get(0).(*model.FavoriteResponse)
	return r, args.Error(1)
}

func (m *mockListingStore) CreateReview(ctx context.Context, req model.CreateReviewRequest) (*model.Review, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*model.Review)
	return r, args.Error(1)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func fixedNow(s string) func() time.Time {
	t := day(s).Add(9 * time.Hour)
	return func() time.Time { return t }
}
