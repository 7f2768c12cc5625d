package usecase

import (
	"context"
	"encoding/json"

	"guardpost/internal/modules/operations/application/port"
	"guardpost/internal/modules/operations/domain"
	"guardpost/internal/shared/upload"
)

// SubmitResult carries the upstream payload plus the attachments that were
// dropped from the selection before forwarding.
type SubmitResult struct {
	Data     json.RawMessage
	Rejected []upload.Rejected
}

// SubmitFormUseCase validates an operations submission and forwards it.
type SubmitFormUseCase struct {
	api port.OperationsAPI
}

func NewSubmitFormUseCase(api port.OperationsAPI) *SubmitFormUseCase {
	return &SubmitFormUseCase{api: api}
}

// Submit resolves the form, enforces its required fields and file policy, and
// posts the accepted selection upstream. Rejected files never block the
// submission; they are reported back by name.
func (uc *SubmitFormUseCase) Submit(ctx context.Context, token, form string, fields map[string]string, files []upload.File) (*SubmitResult, error) {
	spec, err := domain.FormFor(form)
	if err != nil {
		return nil, err
	}
	sanitized, err := spec.ValidateFields(fields)
	if err != nil {
		return nil, err
	}
	accepted, rejected := spec.ScreenFiles(files)

	data, err := uc.api.Submit(ctx, token, spec, sanitized, accepted)
	if err != nil {
		return nil, err
	}
	return &SubmitResult{Data: data, Rejected: rejected}, nil
}
