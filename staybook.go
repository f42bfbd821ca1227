// Package staybook is the client core of a short-term rental marketplace. It
// keeps an authenticated session alive against the marketplace API, answers
// availability questions for a listing calendar and places bookings.
//
//	cfg, err := staybook.LoadConfig()
//	...
//	client, err := staybook.New(cfg)
//	...
//	defer client.Close()
//	_ = client.Initialize(ctx)
package staybook

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/staybook/staybook-go/internal/availability"
	"github.com/staybook/staybook-go/internal/config"
	"github.com/staybook/staybook-go/internal/logger"
	"github.com/staybook/staybook-go/internal/middleware"
	"github.com/staybook/staybook-go/internal/model"
	"github.com/staybook/staybook-go/internal/repository"
	"github.com/staybook/staybook-go/internal/service"
	"github.com/staybook/staybook-go/internal/session"
)

type (
	Config = config.Config

	User            = model.User
	RegisterRequest = model.RegisterRequest
	Listing         = model.Listing
	Booking         = model.Booking
	BookingStatus   = model.BookingStatus
	Review          = model.Review

	Range    = availability.Range
	Interval = availability.Interval
	Result   = availability.Result
	Total    = availability.Total
	Checker  = availability.Checker
	DateSet  = availability.DateSet

	Session      = session.Manager
	Snapshot     = session.Snapshot
	State        = session.State
	Notifier     = session.Notifier
	NotifierFunc = session.NotifierFunc

	APIError        = repository.APIError
	ValidationError = service.ValidationError
)

const (
	Ok         = availability.Ok
	TooShort   = availability.TooShort
	TooLong    = availability.TooLong
	Overlap    = availability.Overlap
	Incomplete = availability.Incomplete
	PastDate   = availability.PastDate

	Uninitialized = session.Uninitialized
	Loading       = session.Loading
	Authenticated = session.Authenticated
	Anonymous     = session.Anonymous
)

var (
	ErrAuthRequired     = service.ErrAuthRequired
	ErrInvalidRange     = service.ErrInvalidRange
	ErrUnauthorized     = repository.ErrUnauthorized
	ErrNotFound         = repository.ErrNotFound
	ErrConflict         = repository.ErrConflict
	ErrMalformedSession = session.ErrMalformedSession
)

var (
	LoadConfig        = config.Load
	DefaultConfig     = config.Default
	NewRange          = availability.NewRange
	ValidateRange     = availability.ValidateRange
	BuildBlockedDates = availability.BuildBlockedDates
	IsDateSelectable  = availability.IsDateSelectable
	ComputeTotal      = availability.ComputeTotal
)

// Client bundles the session and the services built on it.
type Client struct {
	Session   *session.Manager
	Bookings  *service.BookingService
	Favorites *service.FavoritesService
	Reviews   *service.ReviewService

	logger      *slog.Logger
	unsubscribe func()
}

type options struct {
	httpClient *http.Client
	logger     *slog.Logger
	notifier   session.Notifier
	now        func() time.Time
}

// Option configures New.
type Option func(*options)

// WithHTTPClient sets the client whose transport, jar and timeout are used as
// the base for all API traffic.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithLogger sets the logger. By default one is built from the config.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithNotifier sets who is told when a session expires.
func WithNotifier(n Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithClock overrides the clock that decides "today" for calendars.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New wires a Client for cfg. No request is made until Initialize or another
// operation is called.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.New(cfg.LogLevel, cfg.LogFormat)
	}

	var (
		base    http.RoundTripper
		jar     http.CookieJar
		timeout = cfg.HTTPTimeout
	)
	if o.httpClient != nil {
		base = o.httpClient.Transport
		jar = o.httpClient.Jar
		if o.httpClient.Timeout > 0 {
			timeout = o.httpClient.Timeout
		}
	}
	if jar == nil {
		var err error
		if jar, err = cookiejar.New(nil); err != nil {
			return nil, err
		}
	}

	requestLog := middleware.RequestLog(o.logger)
	rateLimit := middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// The auth client carries the refresh cookie but never the interceptor.
	authHTTP := &http.Client{
		Transport: middleware.Chain(base, requestLog, rateLimit),
		Jar:       jar,
		Timeout:   timeout,
	}
	mgr := session.NewManager(
		repository.NewAuthRepository(repository.NewClient(cfg.APIURL, authHTTP)),
		session.WithLogger(o.logger),
		session.WithNotifier(o.notifier),
	)

	// Order is outermost first. The session transport replays a refreshed
	// request directly on base, so requestLog and rateLimit count the pair as
	// one request.
	apiHTTP := &http.Client{
		Transport: middleware.Chain(base, requestLog, rateLimit, mgr.Transport),
		Jar:       jar,
		Timeout:   timeout,
	}
	api := repository.NewClient(cfg.APIURL, apiHTTP)
	bookings := repository.NewBookingRepository(api)
	listings := repository.NewListingRepository(api)

	c := &Client{
		Session:   mgr,
		Bookings:  service.NewBookingService(bookings, listings, mgr, cfg.MinNights, cfg.MaxNights, o.logger),
		Favorites: service.NewFavoritesService(listings, mgr, o.logger),
		Reviews:   service.NewReviewService(listings, mgr, o.logger),
		logger:    o.logger,
	}
	if o.now != nil {
		c.Bookings.SetClock(o.now)
	}

	c.unsubscribe = mgr.Subscribe(favoritesReset(c.Favorites))
	return c, nil
}

// favoritesReset empties the favorites whenever the session user changes.
func favoritesReset(favorites *service.FavoritesService) func(Snapshot) {
	var (
		mu     sync.Mutex
		userID string
	)
	return func(s Snapshot) {
		if s.State == Loading {
			return
		}
		id := ""
		if s.User != nil {
			id = s.User.ID
		}

		mu.Lock()
		changed := id != userID
		userID = id
		mu.Unlock()

		if changed {
			favorites.Reset()
		}
	}
}

// Initialize restores the session from the refresh cookie and loads the
// user's favorites. A visitor without a session ends up Anonymous; that is
// not an error.
func (c *Client) Initialize(ctx context.Context) error {
	if err := c.Session.Initialize(ctx); err != nil {
		return err
	}
	if err := c.Favorites.Load(ctx); err != nil {
		c.logger.Warn("favorites not loaded", "error", err)
	}
	return nil
}

// Close releases subscriptions. The session is left as is.
func (c *Client) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.Session.Close()
}
