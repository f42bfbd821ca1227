package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/staybook/staybook-go/internal/model"
)

// ListingRepository accesses listings, favorites and reviews.
type ListingRepository struct {
	client *Client
}

// NewListingRepository creates a new ListingRepository.
func NewListingRepository(client *Client) *ListingRepository {
	return &ListingRepository{client: client}
}

// Get handles GET /listings/{id}.
func (r *ListingRepository) Get(ctx context.Context, id string) (*model.Listing, error) {
	var listing model.Listing
	if err := r.client.do(ctx, http.MethodGet, "/listings/"+escape(id), nil, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// Favorites handles GET /listings/favorites.
func (r *ListingRepository) Favorites(ctx context.Context) ([]model.Listing, error) {
	var raw json.RawMessage
	if err := r.client.do(ctx, http.MethodGet, "/listings/favorites", nil, &raw); err != nil {
		return nil, err
	}

	var listings []model.Listing
	if err := json.Unmarshal(unwrap(raw), &listings); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}
	return listings, nil
}

// ToggleFavorite handles POST /listings/favorites.
func (r *ListingRepository) ToggleFavorite(ctx context.Context, listingID string) (*model.FavoriteResponse, error) {
	var resp model.FavoriteResponse
	if err := r.client.do(ctx, http.MethodPost, "/listings/favorites", model.FavoriteRequest{ListingID: listingID}, &resp); err != nil {
		return nil, fmt.Errorf("toggle favorite: %w", err)
	}
	return &resp, nil
}

// CreateReview handles POST /reviews.
func (r *ListingRepository) CreateReview(ctx context.Context, req model.CreateReviewRequest) (*model.Review, error) {
	var review model.Review
	if err := r.client.do(ctx, http.MethodPost, "/reviews", req, &review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return &review, nil
}
