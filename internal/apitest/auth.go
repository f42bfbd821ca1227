package apitest

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/staybook/staybook-go/internal/crypto"
	"github.com/staybook/staybook-go/internal/model"
)

var (
	ErrEmailTaken = errors.New("email already registered")
)

// AddUser registers a user with a password.
func (s *Server) AddUser(email, password, fullName string) (model.User, error) {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return model.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.addUserLocked(model.User{Email: email, FullName: fullName}, hash)
	if err != nil {
		return model.User{}, err
	}
	return u.User, nil
}

func (s *Server) addUserLocked(profile model.User, passwordHash string) (*user, error) {
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if _, taken := s.emails[email]; taken {
		return nil, ErrEmailTaken
	}

	profile.ID = uuid.NewString()
	profile.Email = email
	u := &user{User: profile, passwordHash: passwordHash}
	s.users[u.ID] = u
	s.emails[email] = u.ID
	return u, nil
}

func (s *Server) userByEmail(email string) (*user, bool) {
	id, ok := s.emails[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, false
	}
	return s.users[id], true
}

// handleSignup handles POST /api/auth/signup requests.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req = req.Normalize()
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	s.mu.Lock()
	u, err := s.addUserLocked(model.User{
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	}, hash)
	s.mu.Unlock()
	if err != nil {
		writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
		return
	}

	s.startSession(w, http.StatusCreated, u.User)
}

// handleLogin handles POST /api/auth/login requests.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	s.mu.Lock()
	u, ok := s.userByEmail(req.Email)
	s.mu.Unlock()

	if !ok || u.passwordHash == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Invalid credentials"))
		return
	}
	if match, err := crypto.VerifyPassword(req.Password, u.passwordHash); err != nil || !match {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Invalid credentials"))
		return
	}

	s.startSession(w, http.StatusOK, u.User)
}

// handleProviderLogin handles POST /api/auth/{provider} requests. Only
// "google" is known; the stub trusts the optional email in the body.
func (s *Server) handleProviderLogin(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "provider") != "google" {
		writeJSON(w, http.StatusNotFound, errorResponse("unknown provider"))
		return
	}

	var req struct {
		Email    string `json:"email"`
		FullName string `json:"fullName"`
	}
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" {
		req.Email = "google.guest@example.com"
	}
	if req.FullName == "" {
		req.FullName = "Google Guest"
	}

	s.mu.Lock()
	u, ok := s.userByEmail(req.Email)
	if !ok {
		u, _ = s.addUserLocked(model.User{Email: req.Email, FullName: req.FullName}, "")
	}
	s.mu.Unlock()

	s.startSession(w, http.StatusOK, u.User)
}

// handleRefresh handles POST /api/auth/refresh requests. The refresh token
// itself is kept; only a new access token is issued.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(RefreshCookie)
	if err != nil || cookie.Value == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse("no refresh token"))
		return
	}

	s.mu.Lock()
	sess, ok := s.refreshSessions[cookie.Value]
	if ok && time.Now().After(sess.expires) {
		delete(s.refreshSessions, cookie.Value)
		ok = false
	}
	var u *user
	if ok {
		u, ok = s.users[sess.userID]
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("invalid refresh token"))
		return
	}

	token, err := s.issueAccessToken(u.User)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	s.mu.Lock()
	s.refreshCount++
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, model.AuthResponse{AccessToken: token, User: &u.User})
}

// handleLogout handles POST /api/auth/logout requests.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(RefreshCookie); err == nil {
		s.mu.Lock()
		delete(s.refreshSessions, cookie.Value)
		s.mu.Unlock()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    "",
		Path:     "/api/auth",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// startSession issues an access token and a refresh cookie for u.
func (s *Server) startSession(w http.ResponseWriter, status int, u model.User) {
	token, err := s.issueAccessToken(u)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	refresh := uuid.NewString()
	expires := time.Now().Add(s.opts.RefreshExpiry)

	s.mu.Lock()
	s.refreshSessions[refresh] = refreshSession{userID: u.ID, expires: expires}
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    refresh,
		Path:     "/api/auth",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, status, model.AuthResponse{AccessToken: token, User: &u})
}

func (s *Server) issueAccessToken(u model.User) (string, error) {
	token, err := crypto.GenerateToken(u.ID, u.Email, s.opts.Secret, s.opts.AccessExpiry)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.issued[crypto.PeekID(token)] = struct{}{}
	s.mu.Unlock()
	return token, nil
}
