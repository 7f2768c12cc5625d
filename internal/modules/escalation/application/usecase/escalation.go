package usecase

import (
	"context"
	"encoding/json"

	"guardpost/internal/modules/escalation/application/port"
	"guardpost/internal/modules/escalation/domain"
)

// EscalationUseCase drives the complaint thread screen and the enquiry form.
type EscalationUseCase struct {
	api port.EscalationAPI
}

func NewEscalationUseCase(api port.EscalationAPI) *EscalationUseCase {
	return &EscalationUseCase{api: api}
}

// Open loads the full thread: the complaint plus its replies in server order.
func (uc *EscalationUseCase) Open(ctx context.Context, token, escalationID string) (json.RawMessage, error) {
	return uc.api.Thread(ctx, token, escalationID)
}

// Reply posts a trimmed message and re-fetches the thread so the caller sees
// the authoritative reply list rather than an optimistic append.
func (uc *EscalationUseCase) Reply(ctx context.Context, token, escalationID, message string) (json.RawMessage, error) {
	trimmed, err := domain.ReplyMessage(message)
	if err != nil {
		return nil, err
	}
	if err := uc.api.Reply(ctx, token, escalationID, trimmed); err != nil {
		return nil, err
	}
	return uc.api.Thread(ctx, token, escalationID)
}

// Submit validates and forwards one enquiry escalation.
func (uc *EscalationUseCase) Submit(ctx context.Context, token string, submission domain.Submission) error {
	if err := submission.Validate(); err != nil {
		return err
	}
	return uc.api.Submit(ctx, token, submission)
}
