package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/brewedawakening/commerce/internal/domain"
)

func TestIssueAndVerify(t *testing.T) {
	ta := NewTokenAuthority("secret", "test", time.Hour)

	token, err := ta.Issue("user-1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}

	subject, err := ta.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if subject != "user-1" {
		t.Fatalf("expected subject user-1, got %s", subject)
	}
}

func TestIssueRequiresSubject(t *testing.T) {
	ta := NewTokenAuthority("secret", "test", time.Hour)
	if _, err := ta.Issue(""); err == nil {
		t.Fatalf("expected error for empty subject")
	}
}

func TestVerifyMalformed(t *testing.T) {
	ta := NewTokenAuthority("secret", "test", time.Hour)
	_, err := ta.Verify("not-a-token")
	if !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected malformed error, got %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	ta := NewTokenAuthority("secret", "test", -time.Minute)
	token, err := ta.Issue("user-1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	_, err = ta.Verify(token)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewTokenAuthority("secret-a", "test", time.Hour)
	verifier := NewTokenAuthority("secret-b", "test", time.Hour)

	token, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	_, err = verifier.Verify(token)
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected invalid error, got %v", err)
	}
}

func TestExtractToken(t *testing.T) {
	token, err := ExtractToken("Bearer abc.def.ghi")
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if token != "abc.def.ghi" {
		t.Fatalf("unexpected token: %s", token)
	}

	if _, err := ExtractToken("abc.def.ghi"); err == nil {
		t.Fatalf("expected error for missing scheme")
	}
	if _, err := ExtractToken("Basic abc"); err == nil {
		t.Fatalf("expected error for wrong scheme")
	}
}

func TestTTLMatchesConfiguration(t *testing.T) {
	for _, ttl := range []time.Duration{time.Hour, time.Minute, -time.Minute} {
		ta := NewTokenAuthority("secret", "test", ttl)
		if got := ta.TTL(); got != ttl {
			t.Errorf("TTL() = %v, want the configured %v", got, ttl)
		}
	}
}
