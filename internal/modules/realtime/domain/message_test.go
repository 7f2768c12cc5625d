package domain

import "testing"

func TestResourceForEventTopic(t *testing.T) {
	cases := []struct {
		topic string
		want  string
	}{
		{"operations.incidents.created", "incidents"},
		{"operations.patrol-logs.created", "patrol-logs"},
		{"operations.attendance.recorded", "attendance"},
		{"client.escalations.replied", "escalations"},
		{"incidents.created", ""},
		{"incidents", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ResourceForEventTopic(tc.topic); got != tc.want {
			t.Fatalf("ResourceForEventTopic(%q) = %q, want %q", tc.topic, got, tc.want)
		}
	}
}

func TestTopicHelpers(t *testing.T) {
	if got := PageTopic("incidents"); got != "incidents.page" {
		t.Fatalf("unexpected page topic %q", got)
	}
	if got := RefreshTopic(" staff "); got != "staff.refresh" {
		t.Fatalf("unexpected refresh topic %q", got)
	}
	if got := ErrorTopic("payments"); got != "payments.error" {
		t.Fatalf("unexpected error topic %q", got)
	}
}
