package model

import (
	"errors"
	"strings"
)

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrFullNameRequired = errors.New("full name is required")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPhoneTooShort    = errors.New("phone number must be at least 7 characters")
)

const (
	MinPasswordLength = 8
	MinPhoneLength    = 7
)

// User is the profile attached to an authenticated session.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// LoginRequest represents an email/password credential exchange.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents an account registration request.
// PhoneNumber is optional and omitted from the payload when blank.
type RegisterRequest struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate checks the request locally so that obviously bad input never
// reaches the network.
func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return ErrEmailRequired
	}
	if strings.TrimSpace(r.FullName) == "" {
		return ErrFullNameRequired
	}
	if r.Password != r.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if len(r.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if phone := strings.TrimSpace(r.PhoneNumber); phone != "" && len(phone) < MinPhoneLength {
		return ErrPhoneTooShort
	}
	return nil
}

// Normalize trims the fields the API is strict about.
func (r RegisterRequest) Normalize() RegisterRequest {
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	return r
}

// AuthResponse is returned by every credential exchange (login, signup,
// provider login and refresh).
type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	User        *User  `json:"user"`
}
