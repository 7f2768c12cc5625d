package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"guardpost/internal/modules/escalation/application/port"
	"guardpost/internal/modules/escalation/domain"
	"guardpost/internal/shared/upload"
)

type fakeEscalationAPI struct {
	threadCalls int
	replyCalls  int
	submitCalls int
	replyErr    error
	submitErr   error
	lastMessage string
}

func (f *fakeEscalationAPI) Thread(ctx context.Context, token, escalationID string) (json.RawMessage, error) {
	f.threadCalls++
	return json.RawMessage(`{"id":1,"replies":[{"id":10},{"id":11}]}`), nil
}

func (f *fakeEscalationAPI) Reply(ctx context.Context, token, escalationID, message string) error {
	f.replyCalls++
	f.lastMessage = message
	return f.replyErr
}

func (f *fakeEscalationAPI) Submit(ctx context.Context, token string, submission domain.Submission) error {
	f.submitCalls++
	return f.submitErr
}

func TestReplyTrimsAndRefetchesThread(t *testing.T) {
	api := &fakeEscalationAPI{}
	uc := NewEscalationUseCase(api)

	thread, err := uc.Reply(context.Background(), "tok-1", "5", "  guard replaced  ")
	if err != nil {
		t.Fatalf("reply failed: %v", err)
	}
	if api.lastMessage != "guard replaced" {
		t.Fatalf("expected trimmed message, got %q", api.lastMessage)
	}
	if api.threadCalls != 1 {
		t.Fatalf("reply must re-fetch the thread, got %d fetches", api.threadCalls)
	}
	if len(thread) == 0 {
		t.Fatalf("expected the fresh thread to be returned")
	}
}

func TestReplyEmptyMessageNeverTouchesNetwork(t *testing.T) {
	api := &fakeEscalationAPI{}
	uc := NewEscalationUseCase(api)

	if _, err := uc.Reply(context.Background(), "tok-1", "5", "   "); !errors.Is(err, domain.ErrEmptyReply) {
		t.Fatalf("expected ErrEmptyReply, got %v", err)
	}
	if api.replyCalls != 0 || api.threadCalls != 0 {
		t.Fatalf("empty reply must not reach the upstream")
	}
}

func TestReplyFailurePropagatesWithoutRefetch(t *testing.T) {
	api := &fakeEscalationAPI{replyErr: port.ErrUpstream}
	uc := NewEscalationUseCase(api)

	if _, err := uc.Reply(context.Background(), "tok-1", "5", "hello"); !errors.Is(err, port.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if api.threadCalls != 0 {
		t.Fatalf("failed reply must not re-fetch")
	}
}

func validSubmission() domain.Submission {
	return domain.Submission{EscalationType: "1", StaffIdentifier: "7", Message: "Guard missing at gate"}
}

func TestSubmitValidatesLocally(t *testing.T) {
	api := &fakeEscalationAPI{}
	uc := NewEscalationUseCase(api)
	ctx := context.Background()

	cases := []struct {
		name    string
		mutate  func(*domain.Submission)
		wantErr error
	}{
		{"missing type", func(s *domain.Submission) { s.EscalationType = " " }, domain.ErrMissingType},
		{"missing staff", func(s *domain.Submission) { s.StaffIdentifier = "" }, domain.ErrMissingStaff},
		{"empty description", func(s *domain.Submission) { s.Message = "" }, domain.ErrEmptyDescription},
		{"long description", func(s *domain.Submission) { s.Message = strings.Repeat("x", 1001) }, domain.ErrDescriptionTooLong},
		{"oversized image", func(s *domain.Submission) {
			s.Image = &upload.File{Name: "big.png", ContentType: "image/png", Size: domain.MaxImageSize + 1}
		}, upload.ErrFileTooLarge},
		{"bad image type", func(s *domain.Submission) {
			s.Image = &upload.File{Name: "a.gif", ContentType: "image/gif", Size: 10}
		}, upload.ErrUnsupportedType},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			submission := validSubmission()
			tc.mutate(&submission)
			if err := uc.Submit(ctx, "tok-1", submission); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
	if api.submitCalls != 0 {
		t.Fatalf("invalid submissions must not reach the upstream")
	}

	if err := uc.Submit(ctx, "tok-1", validSubmission()); err != nil {
		t.Fatalf("valid submission failed: %v", err)
	}
	if api.submitCalls != 1 {
		t.Fatalf("expected one upstream submit, got %d", api.submitCalls)
	}
}

func TestSubmitExactlyMaxDescriptionPasses(t *testing.T) {
	api := &fakeEscalationAPI{}
	uc := NewEscalationUseCase(api)

	submission := validSubmission()
	submission.Message = strings.Repeat("y", domain.MaxDescriptionLength)
	if err := uc.Submit(context.Background(), "tok-1", submission); err != nil {
		t.Fatalf("1000-char description must pass, got %v", err)
	}
}
