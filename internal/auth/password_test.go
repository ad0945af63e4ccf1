package auth

import (
	"strings"
	"testing"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	digest, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if digest == "correct horse battery staple" {
		t.Fatal("digest must not equal plaintext")
	}
	if !CheckPassword("correct horse battery staple", digest) {
		t.Fatal("expected matching password to verify")
	}
	if CheckPassword("wrong password", digest) {
		t.Fatal("expected non-matching password to fail")
	}
}

func TestHashPasswordFreshSalt(t *testing.T) {
	first, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	second, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct digests for the same plaintext")
	}
}

func TestHashPasswordTooLong(t *testing.T) {
	if _, err := HashPassword(strings.Repeat("x", 100)); err == nil {
		t.Fatal("expected error for over-length password")
	}
}
