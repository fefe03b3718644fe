package token

import (
	"errors"
	"testing"
)

func TestIssueAndVerify(t *testing.T) {
	v := NewVerifier("test-secret")
	raw, err := v.Issue("user-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	subject, err := v.Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if subject != "user-123" {
		t.Fatalf("expected subject roundtrip, got %q", subject)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	raw, err := NewVerifier("secret-a").Issue("user-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, err = NewVerifier("secret-b").Verify(raw)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewVerifier("secret").Verify("not-a-token")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
