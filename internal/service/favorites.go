package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"
)

// FavoritesService keeps the logged-in user's favorite listings in memory.
// Toggles apply locally at once and are rolled back when the API rejects them.
type FavoritesService struct {
	store   ListingStore
	session Session
	logger  *slog.Logger

	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewFavoritesService creates a new FavoritesService with an empty set.
func NewFavoritesService(store ListingStore, session Session, logger *slog.Logger) *FavoritesService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FavoritesService{
		store:   store,
		session: session,
		logger:  logger,
		ids:     make(map[string]struct{}),
	}
}

// Load replaces the set with the favorites stored server-side. Anonymous
// users get an empty set; on error the set is left empty and the error
// returned.
func (s *FavoritesService) Load(ctx context.Context) error {
	if !s.session.Authenticated() {
		s.Reset()
		return nil
	}

	listings, err := s.store.Favorites(ctx)
	if err != nil {
		s.logger.Warn("failed to load favorites", "error", err)
		s.Reset()
		return err
	}

	ids := make(map[string]struct{}, len(listings))
	for _, l := range listings {
		ids[l.ID] = struct{}{}
	}

	s.mu.Lock()
	s.ids = ids
	s.mu.Unlock()
	return nil
}

// Reset empties the set.
func (s *FavoritesService) Reset() {
	s.mu.Lock()
	s.ids = make(map[string]struct{})
	s.mu.Unlock()
}

// IsFavorite reports whether listingID is a favorite.
func (s *FavoritesService) IsFavorite(listingID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[listingID]
	return ok
}

// IDs returns the favorite listing IDs in sorted order.
func (s *FavoritesService) IDs() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Toggle flips listingID and returns the new state. The change is visible
// immediately; if the request fails it is reverted and the error returned.
func (s *FavoritesService) Toggle(ctx context.Context, listingID string) (bool, error) {
	if !s.session.Authenticated() {
		return false, ErrAuthRequired
	}
	if listingID == "" {
		return false, ErrListingRequired
	}

	favorite := s.flip(listingID)

	resp, err := s.store.ToggleFavorite(ctx, listingID)
	if err != nil {
		s.flip(listingID)
		s.logger.Warn("favorite toggle failed, reverted", "listing", listingID, "error", err)
		return !favorite, err
	}

	if resp != nil && resp.Favorite != favorite {
		s.set(listingID, resp.Favorite)
		favorite = resp.Favorite
	}
	return favorite, nil
}

func (s *FavoritesService) flip(listingID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[listingID]; ok {
		delete(s.ids, listingID)
		return false
	}
	s.ids[listingID] = struct{}{}
	return true
}

func (s *FavoritesService) set(listingID string, favorite bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if favorite {
		s.ids[listingID] = struct{}{}
	} else {
		delete(s.ids, listingID)
	}
}
