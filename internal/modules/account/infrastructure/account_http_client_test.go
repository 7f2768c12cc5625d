package infrastructure

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"guardpost/internal/modules/account/application/port"
)

func TestAccountInfoDecodesProfile(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"ok","data":{"name":"Acme Estates","email":"ops@acme.test"}}`))
	}))
	defer server.Close()

	client := NewAccountHTTPClient(server.URL, 5*time.Second, nil)
	account, err := client.AccountInfo(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("account info failed: %v", err)
	}
	if gotPath != "/api/client/account-info" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("unexpected authorization %q", gotAuth)
	}
	if account.Name != "Acme Estates" || account.Email != "ops@acme.test" {
		t.Fatalf("unexpected account %+v", account)
	}
}

func TestOverviewDecodesMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/operations/dashboard" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"ok","data":{
			"stats":{"assigned_locations":"3","active_guards":42,"incidents_today":1},
			"attendance_chart":[{"day":"Mon","rate":87.5,"present":35,"total":40}],
			"recent_activities":[{"id":"a-1","description":"Patrol completed","time":"09:12","type":"patrol"}]
		}}`))
	}))
	defer server.Close()

	client := NewAccountHTTPClient(server.URL, 5*time.Second, nil)
	overview, err := client.Overview(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("overview failed: %v", err)
	}
	if overview.Stats.AssignedLocations.Int() != 3 || overview.Stats.ActiveGuards.Int() != 42 {
		t.Fatalf("unexpected stats %+v", overview.Stats)
	}
	if len(overview.AttendanceChart) != 1 || overview.AttendanceChart[0].Rate != 87.5 {
		t.Fatalf("unexpected chart %+v", overview.AttendanceChart)
	}
	if len(overview.RecentActivities) != 1 || overview.RecentActivities[0].Type != "patrol" {
		t.Fatalf("unexpected activities %+v", overview.RecentActivities)
	}
}

func TestAccountExpiredSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewAccountHTTPClient(server.URL, 5*time.Second, nil)
	if _, err := client.EscalationTypes(context.Background(), "stale"); !errors.Is(err, port.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestAccountFalseEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":false,"message":"Account disabled","data":null}`))
	}))
	defer server.Close()

	client := NewAccountHTTPClient(server.URL, 5*time.Second, nil)
	if _, err := client.AccountInfo(context.Background(), "tok-1"); !errors.Is(err, port.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
