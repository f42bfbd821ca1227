// Package session owns the access-token lifecycle of a marketplace client.
//
// A Manager holds the one authoritative session (access token plus user
// profile). It performs the credential exchanges, attaches the token to
// outgoing requests and, through Transport, transparently refreshes an expired
// session once per request when the API answers 401.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/staybook/staybook-go/internal/crypto"
	"github.com/staybook/staybook-go/internal/model"
)

var (
	ErrMalformedSession = errors.New("credential exchange returned no token or no user")
	ErrRefreshFailed    = errors.New("session refresh failed")
	ErrSessionChanged   = errors.New("session changed during refresh")
)

// State is the authentication state of a Manager.
type State int

const (
	Uninitialized State = iota
	Loading
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is an immutable view of the session.
type Snapshot struct {
	State State
	User  *model.User
	// ExpiresAt is the access token expiry when the token is a JWT, zero otherwise.
	ExpiresAt time.Time
}

// Loading reports whether the startup refresh is still in flight.
func (s Snapshot) Loading() bool {
	return s.State == Loading
}

// Authenticated reports whether the snapshot carries a session.
func (s Snapshot) Authenticated() bool {
	return s.State == Authenticated
}

// Authenticator performs credential exchanges against the remote API. The
// refresh credential travels as an HTTP-only cookie and is never seen here.
type Authenticator interface {
	Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error)
	Signup(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error)
	ProviderLogin(ctx context.Context, provider string) (model.AuthResponse, error)
	Refresh(ctx context.Context) (model.AuthResponse, error)
	Logout(ctx context.Context) error
}

const refreshKey = "refresh"

// Manager holds the current session. It is safe for concurrent use.
type Manager struct {
	auth     Authenticator
	notifier Notifier
	logger   *slog.Logger
	refresh  singleflight.Group

	mu        sync.RWMutex
	state     State
	token     string
	user      *model.User
	expiresAt time.Time
	// gen increments whenever the session is replaced or cleared locally.
	gen uint64

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// Option configures a Manager.
type Option func(*Manager)

// WithNotifier sets the notifier told about expired sessions.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) {
		if n != nil {
			m.notifier = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a Manager in the Uninitialized state.
func NewManager(auth Authenticator, opts ...Option) *Manager {
	m := &Manager{
		auth:   auth,
		logger: slog.Default(),
		subs:   make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.notifier == nil {
		m.notifier = LogNotifier(m.logger)
	}
	return m
}

// Initialize restores a session from the refresh cookie, if any. Failing to
// restore is the normal outcome for a visitor without a session and is not
// reported as an error.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	m.state = Loading
	gen := m.gen
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)

	if _, err := m.doRefresh(ctx); err != nil {
		m.logger.Info("no active session found", "error", err)
		m.clearIf(gen)
		return nil
	}

	m.logger.Info("session restored", "user", m.userEmail())
	return nil
}

// Login exchanges an email and password for a session.
func (m *Manager) Login(ctx context.Context, email, password string) (*model.User, error) {
	resp, err := m.auth.Login(ctx, model.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return m.establish(resp)
}

// RegisterAccount creates an account and starts a session for it. The request
// is validated locally first.
func (m *Manager) RegisterAccount(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := m.auth.Signup(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return m.establish(resp)
}

// LoginWithProvider starts a session through a federated identity provider
// such as "google".
func (m *Manager) LoginWithProvider(ctx context.Context, provider string) (*model.User, error) {
	resp, err := m.auth.ProviderLogin(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("login with %s: %w", provider, err)
	}
	return m.establish(resp)
}

// Logout invalidates the session server-side on a best-effort basis and then
// always clears it locally.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.auth.Logout(ctx); err != nil {
		m.logger.Warn("logout request failed", "error", err)
	}
	m.clear()
}

// Authorize attaches the current access token to req as a bearer credential.
// Without a session any Authorization header is removed.
func (m *Manager) Authorize(req *http.Request) {
	if token := m.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
		return
	}
	req.Header.Del("Authorization")
}

// Token returns the current access token, empty when anonymous.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// User returns a copy of the current user, nil when anonymous.
func (m *Manager) User() *model.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyUser(m.user)
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Loading reports whether Initialize is still restoring the session.
func (m *Manager) Loading() bool {
	return m.State() == Loading
}

// Authenticated reports whether a session is present.
func (m *Manager) Authenticated() bool {
	return m.State() == Authenticated
}

// Snapshot returns a consistent view of the session.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// Subscribe registers fn to be called with a snapshot after every change.
// fn runs synchronously on the goroutine that made the change and must not
// block. The returned function removes the subscription.
func (m *Manager) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

// Close drops all subscriptions. The session itself is left untouched.
func (m *Manager) Close() {
	m.subMu.Lock()
	m.subs = make(map[int]func(Snapshot))
	m.subMu.Unlock()
}

// doRefresh performs one refresh exchange. Concurrent callers share a single
// exchange. A result is applied only if no local login or logout happened
// while it was in flight; otherwise it is dropped and ErrSessionChanged is
// returned.
func (m *Manager) doRefresh(ctx context.Context) (string, error) {
	ch := m.refresh.DoChan(refreshKey, func() (any, error) {
		gen := m.generation()

		resp, err := m.auth.Refresh(context.WithoutCancel(ctx))
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
		}
		if err := checkResponse(resp); err != nil {
			return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
		}

		if !m.replaceIf(gen, resp) {
			return "", ErrSessionChanged
		}
		return resp.AccessToken, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// expire clears a session whose refresh failed and tells the notifier. It
// does nothing if the session changed since gen was read, and notifies only
// when a session actually ended.
func (m *Manager) expire(ctx context.Context, gen uint64) {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return
	}
	wasAuthenticated := m.state == Authenticated
	m.resetLocked()
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.publish(snap)
	if wasAuthenticated {
		m.notifier.SessionExpired(ctx)
	}
}

func (m *Manager) establish(resp model.AuthResponse) (*model.User, error) {
	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.setLocked(resp)
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.publish(snap)
	return copyUser(resp.User), nil
}

func (m *Manager) replaceIf(gen uint64, resp model.AuthResponse) bool {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return false
	}
	m.setLocked(resp)
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.publish(snap)
	return true
}

func (m *Manager) clear() {
	m.mu.Lock()
	m.resetLocked()
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.publish(snap)
}

func (m *Manager) clearIf(gen uint64) {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return
	}
	m.resetLocked()
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.publish(snap)
}

func (m *Manager) setLocked(resp model.AuthResponse) {
	m.token = resp.AccessToken
	m.user = copyUser(resp.User)
	m.expiresAt, _ = crypto.PeekExpiry(resp.AccessToken)
	m.state = Authenticated
	m.gen++
}

func (m *Manager) resetLocked() {
	m.token = ""
	m.user = nil
	m.expiresAt = time.Time{}
	m.state = Anonymous
	m.gen++
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		State:     m.state,
		User:      copyUser(m.user),
		ExpiresAt: m.expiresAt,
	}
}

func (m *Manager) generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gen
}

func (m *Manager) userID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return ""
	}
	return m.user.ID
}

func (m *Manager) userEmail() string {
	if u := m.User(); u != nil {
		return u.Email
	}
	return ""
}

func (m *Manager) publish(snap Snapshot) {
	m.subMu.Lock()
	subs := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.subMu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func checkResponse(resp model.AuthResponse) error {
	if resp.AccessToken == "" || resp.User == nil {
		return ErrMalformedSession
	}
	return nil
}

func copyUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
