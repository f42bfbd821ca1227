package repository

import (
	"context"
	"net/http"

	"github.com/staybook/staybook-go/internal/model"
)

// AuthRepository performs the credential exchanges. Its client must carry a
// cookie jar so the HTTP-only refresh cookie set by the API is replayed on
// Refresh and Logout, and must not carry the session refresh interceptor.
type AuthRepository struct {
	client *Client
}

// NewAuthRepository creates a new AuthRepository.
func NewAuthRepository(client *Client) *AuthRepository {
	return &AuthRepository{client: client}
}

// Login handles POST /auth/login.
func (r *AuthRepository) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	var resp model.AuthResponse
	err := r.client.do(ctx, http.MethodPost, "/auth/login", req, &resp)
	return resp, err
}

// Signup handles POST /auth/signup.
func (r *AuthRepository) Signup(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	var resp model.AuthResponse
	err := r.client.do(ctx, http.MethodPost, "/auth/signup", req, &resp)
	return resp, err
}

// ProviderLogin handles POST /auth/{provider}, e.g. /auth/google.
func (r *AuthRepository) ProviderLogin(ctx context.Context, provider string) (model.AuthResponse, error) {
	var resp model.AuthResponse
	err := r.client.do(ctx, http.MethodPost, "/auth/"+escape(provider), nil, &resp)
	return resp, err
}

// Refresh handles POST /auth/refresh.
func (r *AuthRepository) Refresh(ctx context.Context) (model.AuthResponse, error) {
	var resp model.AuthResponse
	err := r.client.do(ctx, http.MethodPost, "/auth/refresh", nil, &resp)
	return resp, err
}

// Logout handles POST /auth/logout.
func (r *AuthRepository) Logout(ctx context.Context) error {
	return r.client.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}
