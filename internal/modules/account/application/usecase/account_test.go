package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"guardpost/internal/modules/account/application/port"
	"guardpost/internal/modules/account/domain"
)

type fakeAccountAPI struct {
	typeCalls int
	typesErr  error
}

func (f *fakeAccountAPI) AccountInfo(ctx context.Context, token string) (*domain.Account, error) {
	return &domain.Account{Name: "Acme Estates", Email: "ops@acme.test"}, nil
}

func (f *fakeAccountAPI) Overview(ctx context.Context, token string) (*domain.Overview, error) {
	return &domain.Overview{}, nil
}

func (f *fakeAccountAPI) EscalationTypes(ctx context.Context, token string) (json.RawMessage, error) {
	f.typeCalls++
	if f.typesErr != nil {
		return nil, f.typesErr
	}
	return json.RawMessage(`["Theft","Fire"]`), nil
}

func TestEscalationTypesCached(t *testing.T) {
	api := &fakeAccountAPI{}
	uc := NewAccountUseCase(api)
	ctx := context.Background()

	first, err := uc.EscalationTypes(ctx, "tok-1")
	if err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	second, err := uc.EscalationTypes(ctx, "tok-1")
	if err != nil {
		t.Fatalf("cached fetch failed: %v", err)
	}
	if api.typeCalls != 1 {
		t.Fatalf("expected one upstream call, got %d", api.typeCalls)
	}
	if string(first) != string(second) {
		t.Fatalf("cached payload differs: %s vs %s", first, second)
	}
}

func TestEscalationTypesExpire(t *testing.T) {
	api := &fakeAccountAPI{}
	uc := NewAccountUseCase(api)
	uc.typesTTL = 10 * time.Millisecond

	ctx := context.Background()
	if _, err := uc.EscalationTypes(ctx, "tok-1"); err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := uc.EscalationTypes(ctx, "tok-1"); err != nil {
		t.Fatalf("refetch failed: %v", err)
	}
	if api.typeCalls != 2 {
		t.Fatalf("expected refetch after TTL, got %d calls", api.typeCalls)
	}
}

func TestEscalationTypesErrorNotCached(t *testing.T) {
	api := &fakeAccountAPI{typesErr: port.ErrUpstream}
	uc := NewAccountUseCase(api)
	ctx := context.Background()

	if _, err := uc.EscalationTypes(ctx, "tok-1"); !errors.Is(err, port.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	api.typesErr = nil
	if _, err := uc.EscalationTypes(ctx, "tok-1"); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if api.typeCalls != 2 {
		t.Fatalf("failed fetch must not populate the cache, got %d calls", api.typeCalls)
	}
}
