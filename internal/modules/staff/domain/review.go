package domain

import (
	"errors"
	"strings"
)

var (
	ErrNoRating       = errors.New("star rating not selected")
	ErrStarOutOfRange = errors.New("star rating must be between 1 and 5")
	ErrEmptyComment   = errors.New("review message is empty")
	ErrMissingStaff   = errors.New("staff id is required")
)

// Review is one star rating with its message for an assigned operative.
type Review struct {
	StaffID int
	Star    int
	Comment string
}

func (r Review) Validate() error {
	if r.StaffID <= 0 {
		return ErrMissingStaff
	}
	if r.Star == 0 {
		return ErrNoRating
	}
	if r.Star < 1 || r.Star > 5 {
		return ErrStarOutOfRange
	}
	if strings.TrimSpace(r.Comment) == "" {
		return ErrEmptyComment
	}
	return nil
}
