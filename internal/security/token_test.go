package security

import (
	"testing"
	"time"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	signed, err := SignSessionToken("test-secret", 42, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, errParse := ParseSessionToken("test-secret", signed)
	if errParse != nil {
		t.Fatalf("parse: %v", errParse)
	}
	if claims.UserID != 42 {
		t.Fatalf("expected user id 42, got %d", claims.UserID)
	}
}

func TestSessionToken_WrongSecret(t *testing.T) {
	signed, err := SignSessionToken("test-secret", 42, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, errParse := ParseSessionToken("other-secret", signed); errParse == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestSessionToken_Expired(t *testing.T) {
	signed, err := SignSessionToken("test-secret", 42, -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, errParse := ParseSessionToken("test-secret", signed); errParse == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "hunter22") {
		t.Fatalf("expected password to match")
	}
	if CheckPassword(hash, "hunter23") {
		t.Fatalf("expected mismatch for wrong password")
	}
}
