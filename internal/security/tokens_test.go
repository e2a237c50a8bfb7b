package security

import (
	"testing"
	"time"
)

func TestIssueAndValidateSession(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}

	token, expiresAt, err := p.IssueSession("session-1", "user-1")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	if token == "" {
		t.Fatal("IssueSession returned empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Errorf("expiresAt = %v, want future", expiresAt)
	}

	sessionID, userID, err := p.ValidateSession(token)
	if err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}
	if sessionID != "session-1" {
		t.Errorf("session_id = %q, want %q", sessionID, "session-1")
	}
	if userID != "user-1" {
		t.Errorf("user_id = %q, want %q", userID, "user-1")
	}
}

func TestValidateSession_Failure_Malformed(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, _, err := p.ValidateSession(token); err == nil {
			t.Errorf("ValidateSession(%q): expected error", token)
		}
	}
}

func TestValidateSession_Failure_Expired(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	p.sessionTTL = -time.Minute

	token, _, err := p.IssueSession("session-1", "user-1")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	if _, _, err := p.ValidateSession(token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestValidateSession_Failure_WrongIssuer(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	token, _, err := p.IssueSession("session-1", "user-1")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	other := NewTokenProvider(p.privateKey, p.publicKey, "other-issuer", "test-audience", time.Hour)
	if _, _, err := other.ValidateSession(token); err == nil {
		t.Fatal("expected error for issuer mismatch")
	}
}

func TestValidateSession_Failure_WrongAudience(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	token, _, err := p.IssueSession("session-1", "user-1")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	other := NewTokenProvider(p.privateKey, p.publicKey, "test-issuer", "other-audience", time.Hour)
	if _, _, err := other.ValidateSession(token); err == nil {
		t.Fatal("expected error for audience mismatch")
	}
}
