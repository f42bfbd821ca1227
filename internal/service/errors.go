package service

import (
	"errors"

	"github.com/staybook/staybook-go/internal/availability"
)

var (
	ErrAuthRequired    = errors.New("you need to log in first")
	ErrListingRequired = errors.New("listing is required")
	ErrInvalidGuests   = errors.New("at least one guest is required")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrCommentRequired = errors.New("comment is required")
	ErrInvalidRange    = errors.New("invalid date range")
)

// ValidationError reports a date range rejected before any request was made.
type ValidationError struct {
	Result  availability.Result
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return ErrInvalidRange.Error() + ": " + e.Result.String()
	}
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRange
}
