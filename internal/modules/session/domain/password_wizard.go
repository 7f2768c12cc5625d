package domain

import (
	"errors"
	"fmt"
	"strings"
)

// The password change flow is a three step wizard: request an OTP, verify it,
// then submit the new password. Modelling it as an explicit state machine
// keeps illegal jumps (submitting a password before the OTP was verified)
// unrepresentable.
type WizardState string

const (
	StateAwaitingOTPRequest WizardState = "awaiting_otp_request"
	StateAwaitingOTPVerify  WizardState = "awaiting_otp_verify"
	StateReadyToSubmit      WizardState = "ready_to_submit"
)

type WizardEvent string

const (
	EventRequestOTP WizardEvent = "request_otp"
	EventVerifyOTP  WizardEvent = "verify_otp"
	EventSubmit     WizardEvent = "submit"
	EventBack       WizardEvent = "back"
)

var (
	ErrInvalidTransition = errors.New("invalid wizard transition")
	ErrOTPTooShort       = errors.New("otp too short")
)

// wizardTransitions is the full transition table. Back always returns to the
// first step; resending an OTP is RequestOTP fired from the verify step.
var wizardTransitions = map[WizardState]map[WizardEvent]WizardState{
	StateAwaitingOTPRequest: {
		EventRequestOTP: StateAwaitingOTPVerify,
	},
	StateAwaitingOTPVerify: {
		EventVerifyOTP:  StateReadyToSubmit,
		EventRequestOTP: StateAwaitingOTPVerify,
		EventBack:       StateAwaitingOTPRequest,
	},
	StateReadyToSubmit: {
		// A successful submit restarts the wizard so a later change has to
		// re-verify identity.
		EventSubmit: StateAwaitingOTPRequest,
		EventBack:   StateAwaitingOTPRequest,
	},
}

// PasswordWizard tracks one user's progress through the change-password flow.
type PasswordWizard struct {
	state WizardState
}

func NewPasswordWizard() *PasswordWizard {
	return &PasswordWizard{state: StateAwaitingOTPRequest}
}

func (w *PasswordWizard) State() WizardState { return w.state }

// Fire applies an event, returning the new state or ErrInvalidTransition.
func (w *PasswordWizard) Fire(event WizardEvent) (WizardState, error) {
	next, ok := wizardTransitions[w.state][event]
	if !ok {
		return w.state, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, event, w.state)
	}
	w.state = next
	return next, nil
}

// CanFire reports whether the event is legal in the current state without
// applying it.
func (w *PasswordWizard) CanFire(event WizardEvent) bool {
	_, ok := wizardTransitions[w.state][event]
	return ok
}

// ValidateOTP applies the local guard the form enforces before any network
// call is made.
func ValidateOTP(otp string) error {
	if len(strings.TrimSpace(otp)) < 4 {
		return ErrOTPTooShort
	}
	return nil
}
