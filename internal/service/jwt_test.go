package service

import (
	"strings"
	"testing"
)

func initTestJWT(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	InitJWT()
}

func TestJWTRoundTrip(t *testing.T) {
	initTestJWT(t)

	token, err := GenerateJWT(42)
	if err != nil {
		t.Fatalf("GenerateJWT() error: %v", err)
	}

	userID, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT() error: %v", err)
	}
	if userID != 42 {
		t.Errorf("userID = %d, want 42", userID)
	}
}

func TestJWTRejectsTamperedToken(t *testing.T) {
	initTestJWT(t)

	token, err := GenerateJWT(42)
	if err != nil {
		t.Fatalf("GenerateJWT() error: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", token)
	}
	tampered := parts[0] + "." + parts[1] + "." + "x" + parts[2][1:]

	if _, err := ParseJWT(tampered); err != ErrInvalidToken {
		t.Errorf("ParseJWT(tampered) error = %v, want %v", err, ErrInvalidToken)
	}
}

func TestJWTRejectsGarbage(t *testing.T) {
	initTestJWT(t)

	if _, err := ParseJWT("not-a-token"); err != ErrInvalidToken {
		t.Errorf("ParseJWT(garbage) error = %v, want %v", err, ErrInvalidToken)
	}
	if _, err := ParseJWT(""); err != ErrInvalidToken {
		t.Errorf("ParseJWT(empty) error = %v, want %v", err, ErrInvalidToken)
	}
}
