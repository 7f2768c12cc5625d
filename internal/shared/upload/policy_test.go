package upload

import (
	"errors"
	"testing"
)

func TestCheckRejectsOversizedFile(t *testing.T) {
	policy := Policy{MaxSize: 100}
	err := policy.Check(File{Name: "big.png", ContentType: "image/png", Size: 101})
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestCheckEnforcesTypeAllowlist(t *testing.T) {
	policy := Policy{MaxSize: 1 << 20, AllowedTypes: []string{"image/jpeg", "image/png"}}
	if err := policy.Check(File{Name: "a.png", ContentType: "image/png", Size: 10}); err != nil {
		t.Fatalf("png must pass, got %v", err)
	}
	if err := policy.Check(File{Name: "a.gif", ContentType: "image/gif", Size: 10}); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestCheckWildcardType(t *testing.T) {
	policy := Policy{AllowedTypes: []string{"image/*", "video/*"}}
	if err := policy.Check(File{Name: "clip.mp4", ContentType: "video/mp4", Size: 10}); err != nil {
		t.Fatalf("video must pass the wildcard, got %v", err)
	}
	if err := policy.Check(File{Name: "doc.pdf", ContentType: "application/pdf", Size: 10}); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestScreenReportsRejectionsByName(t *testing.T) {
	policy := Policy{MaxSize: 100, AllowedTypes: []string{"image/png"}}
	accepted, rejected := policy.Screen([]File{
		{Name: "ok.png", ContentType: "image/png", Size: 50},
		{Name: "big.png", ContentType: "image/png", Size: 500},
		{Name: "bad.exe", ContentType: "application/octet-stream", Size: 10},
		{Name: "ok.png", ContentType: "image/png", Size: 50},
	})
	if len(accepted) != 2 {
		t.Fatalf("duplicates are kept, expected 2 accepted, got %d", len(accepted))
	}
	if len(rejected) != 2 {
		t.Fatalf("expected 2 rejections, got %d", len(rejected))
	}
	if rejected[0].Name != "big.png" || rejected[0].Reason != "too large" {
		t.Fatalf("unexpected rejection %+v", rejected[0])
	}
	if rejected[1].Name != "bad.exe" || rejected[1].Reason != "unsupported type" {
		t.Fatalf("unexpected rejection %+v", rejected[1])
	}
}
