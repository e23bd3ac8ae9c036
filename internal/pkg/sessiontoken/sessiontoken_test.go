package sessiontoken

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateAndParse(t *testing.T) {
	token, err := Generate("secret", time.Hour, "ada@example.com", "Ada")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	claims, err := Parse("secret", token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.Email != "ada@example.com" {
		t.Errorf("expected email ada@example.com, got %q", claims.Email)
	}
	if claims.Name != "Ada" {
		t.Errorf("expected name Ada, got %q", claims.Name)
	}
}

func TestParseWrongSecret(t *testing.T) {
	token, err := Generate("secret", time.Hour, "ada@example.com", "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := Parse("other-secret", token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseExpired(t *testing.T) {
	token, err := Generate("secret", -time.Minute, "ada@example.com", "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := Parse("secret", token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseGarbage(t *testing.T) {
	if _, err := Parse("secret", "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
