package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"guardpost/internal/modules/session/application/port"
	"guardpost/internal/modules/session/domain"
)

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
)

// PasswordChangeUseCase owns one wizard per session and forwards each legal
// transition to the upstream auth endpoints. A failed upstream call rolls the
// wizard back so the user can retry the same step.
type PasswordChangeUseCase struct {
	API port.AuthAPI

	mu      sync.Mutex
	wizards map[string]*domain.PasswordWizard
}

func NewPasswordChangeUseCase(api port.AuthAPI) *PasswordChangeUseCase {
	return &PasswordChangeUseCase{API: api, wizards: make(map[string]*domain.PasswordWizard)}
}

func (uc *PasswordChangeUseCase) wizardFor(sessionID string) *domain.PasswordWizard {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	wizard, ok := uc.wizards[sessionID]
	if !ok {
		wizard = domain.NewPasswordWizard()
		uc.wizards[sessionID] = wizard
	}
	return wizard
}

// State reports the wizard step for a session, creating the wizard lazily.
func (uc *PasswordChangeUseCase) State(sessionID string) domain.WizardState {
	return uc.wizardFor(sessionID).State()
}

// RequestOTP fires from step one, or re-fires from step two as a resend.
func (uc *PasswordChangeUseCase) RequestOTP(ctx context.Context, session *domain.Session) (domain.WizardState, error) {
	wizard := uc.wizardFor(session.ID)
	uc.mu.Lock()
	if !wizard.CanFire(domain.EventRequestOTP) {
		uc.mu.Unlock()
		return wizard.State(), domain.ErrInvalidTransition
	}
	uc.mu.Unlock()

	if err := uc.API.SendOTP(ctx, session.Token); err != nil {
		slog.Warn("send otp failed", slog.String("sessionId", session.ID), slog.Any("error", err))
		return wizard.State(), err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	return wizard.Fire(domain.EventRequestOTP)
}

// VerifyOTP fires from step two after the local length guard passes.
func (uc *PasswordChangeUseCase) VerifyOTP(ctx context.Context, session *domain.Session, otp string) (domain.WizardState, error) {
	wizard := uc.wizardFor(session.ID)
	uc.mu.Lock()
	if !wizard.CanFire(domain.EventVerifyOTP) {
		uc.mu.Unlock()
		return wizard.State(), domain.ErrInvalidTransition
	}
	uc.mu.Unlock()

	if err := domain.ValidateOTP(otp); err != nil {
		return wizard.State(), err
	}
	if err := uc.API.VerifyOTP(ctx, session.Token, otp); err != nil {
		slog.Warn("verify otp failed", slog.String("sessionId", session.ID), slog.Any("error", err))
		return wizard.State(), err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	return wizard.Fire(domain.EventVerifyOTP)
}

// Submit fires from step three; success resets the wizard to step one.
func (uc *PasswordChangeUseCase) Submit(ctx context.Context, session *domain.Session, change port.PasswordChange) (string, domain.WizardState, error) {
	wizard := uc.wizardFor(session.ID)
	uc.mu.Lock()
	if !wizard.CanFire(domain.EventSubmit) {
		uc.mu.Unlock()
		return "", wizard.State(), domain.ErrInvalidTransition
	}
	uc.mu.Unlock()

	if len(strings.TrimSpace(change.NewPassword)) < 6 {
		return "", wizard.State(), ErrPasswordTooShort
	}
	if change.NewPassword != change.Confirmation {
		return "", wizard.State(), ErrPasswordMismatch
	}

	message, err := uc.API.ChangePassword(ctx, session.Token, change)
	if err != nil {
		slog.Warn("change password failed", slog.String("sessionId", session.ID), slog.Any("error", err))
		return "", wizard.State(), err
	}

	uc.mu.Lock()
	state, ferr := wizard.Fire(domain.EventSubmit)
	uc.mu.Unlock()
	if ferr != nil {
		return message, state, ferr
	}
	slog.Info("password changed", slog.String("sessionId", session.ID))
	return message, state, nil
}

// Back returns the wizard to the first step from any later step.
func (uc *PasswordChangeUseCase) Back(session *domain.Session) (domain.WizardState, error) {
	wizard := uc.wizardFor(session.ID)
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return wizard.Fire(domain.EventBack)
}

// Forget drops the wizard when the session ends.
func (uc *PasswordChangeUseCase) Forget(sessionID string) {
	uc.mu.Lock()
	delete(uc.wizards, sessionID)
	uc.mu.Unlock()
}
