package model

import "time"

// Listing represents the subset of a listing needed to quote and book it.
type Listing struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	City          string   `json:"city,omitempty"`
	PricePerNight int64    `json:"pricePerNight"`
	Reviews       []Review `json:"reviews,omitempty"`
}

// Review represents a published guest review.
type Review struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listingId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	User      *User     `json:"user,omitempty"`
}

// CreateReviewRequest represents a review submission.
type CreateReviewRequest struct {
	ListingID string `json:"listingId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// FavoriteRequest toggles a listing in the caller's favorites.
type FavoriteRequest struct {
	ListingID string `json:"listingId"`
}

// FavoriteResponse reports the favorite state after a toggle.
type FavoriteResponse struct {
	ListingID string `json:"listingId"`
	Favorite  bool   `json:"favorite"`
}
