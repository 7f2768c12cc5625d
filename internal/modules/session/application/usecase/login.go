package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"guardpost/internal/modules/session/application/port"
	"guardpost/internal/modules/session/domain"
	"guardpost/internal/modules/session/infrastructure"
	"guardpost/internal/shared/auth"
)

type LoginInput struct {
	Email      string
	Password   string
	DeviceName string
}

type LoginOutput struct {
	Session      *domain.Session
	ChannelToken string
	Message      string
}

// LoginUseCase drives the full login flow: upstream call, account flag
// checks, session creation and channel token issuance.
type LoginUseCase struct {
	API    port.AuthAPI
	Store  *infrastructure.SessionStore
	Issuer *auth.Issuer
}

func NewLoginUseCase(api port.AuthAPI, store *infrastructure.SessionStore, issuer *auth.Issuer) *LoginUseCase {
	return &LoginUseCase{API: api, Store: store, Issuer: issuer}
}

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	email := strings.TrimSpace(input.Email)
	slog.Info("login attempt", slog.String("email", email))

	result, err := uc.API.Login(ctx, port.Credentials{
		Email:      email,
		Password:   input.Password,
		DeviceName: input.DeviceName,
	})
	if err != nil {
		slog.Warn("login rejected", slog.String("email", email), slog.Any("error", err))
		return nil, err
	}

	// HTTP-level failures were handled by the client; the account flags come
	// back as "0"/"1" strings and gate an otherwise valid credential pair.
	if !result.User.Active() {
		slog.Warn("login blocked: inactive account", slog.String("email", email))
		return nil, port.ErrAccountInactive
	}
	if !result.User.LoginEnabled() {
		slog.Warn("login blocked: login disabled", slog.String("email", email))
		return nil, port.ErrLoginDisabled
	}

	session := uc.Store.Create(result.Token, result.User)
	channelToken := ""
	if uc.Issuer != nil {
		channelToken, err = uc.Issuer.Issue(strconv.Itoa(result.User.ID), session.ID, result.User.Name)
		if err != nil {
			slog.Error("channel token issue failed", slog.String("email", email), slog.Any("error", err))
			channelToken = ""
		}
	}

	slog.Info("login success", slog.String("email", email), slog.String("sessionId", session.ID))
	return &LoginOutput{Session: session, ChannelToken: channelToken, Message: result.Message}, nil
}

// Logout clears the stored session. Responses still in flight with the old
// token are discarded when they come back 401.
func (uc *LoginUseCase) Logout(token string) {
	uc.Store.Clear(token)
	slog.Info("session cleared")
}
