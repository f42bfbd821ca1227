package service

import (
	"context"

	"github.com/staybook/staybook-go/internal/model"
)

// Session reports whether requests will carry a session.
type Session interface {
	Authenticated() bool
}

// BookingStore is the remote booking API.
type BookingStore interface {
	ListByListing(ctx context.Context, listingID string) ([]model.RawReservation, error)
	Create(ctx context.Context, req model.CreateBookingRequest) (*model.Booking, error)
	ListMine(ctx context.Context) ([]model.Booking, error)
	Cancel(ctx context.Context, id string) (*model.Booking, error)
}

// ListingStore is the remote listing, favorites and review API.
type ListingStore interface {
	Get(ctx context.Context, id string) (*model.Listing, error)
	Favorites(ctx context.Context) ([]model.Listing, error)
	ToggleFavorite(ctx context.Context, listingID string) (*model.FavoriteResponse, error)
	CreateReview(ctx context.Context, req model.CreateReviewRequest) (*model.Review, error)
}
