// Package apitest runs an in-memory stand-in for the marketplace API. It
// implements just enough of the API to exercise the client in tests and local
// development, and exposes hooks to force token expiry and failures.
package apitest

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/staybook/staybook-go/internal/model"
)

// Default settings.
const (
	DefaultSecret        = "apitest-secret"
	DefaultAccessExpiry  = 15 * time.Minute
	DefaultRefreshExpiry = 7 * 24 * time.Hour
	RefreshCookie        = "refresh_token"
)

type user struct {
	model.User
	passwordHash string
}

type refreshSession struct {
	userID  string
	expires time.Time
}

type booking struct {
	model.Booking
	userID string
}

// Options configures a Server.
type Options struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	// AuthRPS and AuthBurst limit /auth requests per client IP. AuthRPS <= 0
	// disables the limit.
	AuthRPS   float64
	AuthBurst int
	Logger    *slog.Logger
}

// Server is the stub API. It is safe for concurrent use.
type Server struct {
	opts Options

	mu              sync.Mutex
	users           map[string]*user  // by ID
	emails          map[string]string // email -> user ID
	listings        map[string]*model.Listing
	reservations    map[string][]model.RawReservation // seeded, by listing
	bookings        map[string]*booking
	favorites       map[string]map[string]struct{} // user -> listings
	refreshSessions map[string]refreshSession
	issued          map[string]struct{} // access token IDs
	revoked         map[string]struct{}
	failNext        map[string]int
	refreshCount    int
}

// New creates a Server with no data.
func New(opts Options) *Server {
	if opts.Secret == "" {
		opts.Secret = DefaultSecret
	}
	if opts.AccessExpiry == 0 {
		opts.AccessExpiry = DefaultAccessExpiry
	}
	if opts.RefreshExpiry == 0 {
		opts.RefreshExpiry = DefaultRefreshExpiry
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Server{
		opts:            opts,
		users:           make(map[string]*user),
		emails:          make(map[string]string),
		listings:        make(map[string]*model.Listing),
		reservations:    make(map[string][]model.RawReservation),
		bookings:        make(map[string]*booking),
		favorites:       make(map[string]map[string]struct{}),
		refreshSessions: make(map[string]refreshSession),
		issued:          make(map[string]struct{}),
		revoked:         make(map[string]struct{}),
		failNext:        make(map[string]int),
	}
}

// Handler returns the API routes mounted under /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(s.injectFailures)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(s.opts.AuthRPS, s.opts.AuthBurst))
			r.Post("/auth/signup", s.handleSignup)
			r.Post("/auth/login", s.handleLogin)
			r.Post("/auth/refresh", s.handleRefresh)
			r.Post("/auth/logout", s.handleLogout)
			r.Post("/auth/{provider}", s.handleProviderLogin)
		})

		r.Get("/listings/{id}", s.handleGetListing)
		r.Get("/listings/{id}/bookings", s.handleListingBookings)

		r.Group(func(r chi.Router) {
			r.Use(s.bearerAuth)
			r.Get("/listings/favorites", s.handleListFavorites)
			r.Post("/listings/favorites", s.handleToggleFavorite)
			r.Get("/bookings", s.handleMyBookings)
			r.Post("/bookings", s.handleCreateBooking)
			r.Patch("/bookings/{id}/cancel", s.handleCancelBooking)
			r.Post("/reviews", s.handleCreateReview)
		})
	})

	return r
}

// ExpireAccessTokens invalidates every access token issued so far. The
// refresh sessions stay valid, so the next request forces a refresh.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.issued {
		s.revoked[id] = struct{}{}
	}
}

// RevokeRefreshSessions ends every refresh session.
func (s *Server) RevokeRefreshSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshSessions = make(map[string]refreshSession)
}

// FailNext makes the next request to path answer with status.
func (s *Server) FailNext(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[path] = status
}

// RefreshCount returns the number of successful refresh exchanges.
func (s *Server) RefreshCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCount
}

// Booking returns a copy of a booking.
func (s *Server) Booking(id string) (model.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return model.Booking{}, false
	}
	return b.Booking, true
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status, ok := s.failNext[r.URL.Path]
		if ok {
			delete(s.failNext, r.URL.Path)
		}
		s.mu.Unlock()

		if ok {
			writeJSON(w, status, errorResponse(http.StatusText(status)))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.opts.Logger.Debug("stub request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"request_id", r.Header.Get("X-Request-Id"),
			"duration", time.Since(start),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
