package domain

import (
	"errors"
	"strings"
)

var (
	ErrMissingService   = errors.New("service is required")
	ErrInvalidStaff     = errors.New("number of staff is required")
	ErrMissingLocation  = errors.New("location is required")
	ErrMissingStartDate = errors.New("start date is required")
	ErrMissingEndDate   = errors.New("end date is required")
	ErrMissingReference = errors.New("transaction reference is required")
)

// ServiceRequest is the "request new service" form.
type ServiceRequest struct {
	Service    string
	StaffCount int
	Location   string
	StartDate  string
	EndDate    string
}

func (r ServiceRequest) Validate() error {
	if strings.TrimSpace(r.Service) == "" {
		return ErrMissingService
	}
	if r.StaffCount <= 0 {
		return ErrInvalidStaff
	}
	if strings.TrimSpace(r.Location) == "" {
		return ErrMissingLocation
	}
	if strings.TrimSpace(r.StartDate) == "" {
		return ErrMissingStartDate
	}
	if strings.TrimSpace(r.EndDate) == "" {
		return ErrMissingEndDate
	}
	return nil
}
