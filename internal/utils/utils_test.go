package utils

import (
	"strings"
	"testing"
)

func TestGenerateSecureOTP(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateSecureOTP()
		if err != nil {
			t.Fatalf("GenerateSecureOTP returned error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q has length %d, want 6", code, len(code))
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q contains non-digit %q", code, r)
			}
		}
		seen[code] = true
	}
	// 50 identical draws would mean the generator is broken.
	if len(seen) < 2 {
		t.Error("all generated codes identical")
	}
}

func TestGenerateTransactionID(t *testing.T) {
	a := GenerateTransactionID("HIRE")
	b := GenerateTransactionID("HIRE")
	if !strings.HasPrefix(a, "HIRE-") {
		t.Errorf("transaction id %q missing prefix", a)
	}
	if a == b {
		t.Error("transaction ids collide")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPassword(hash, "s3cret-pass") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong-pass") {
		t.Error("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := CreateToken(42, "provider")
	if err != nil {
		t.Fatalf("CreateToken returned error: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken returned error: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Role != "provider" {
		t.Errorf("Role = %q, want provider", claims.Role)
	}
}

func TestParseTokenRejectsTampering(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := CreateToken(42, "customer")
	if err != nil {
		t.Fatalf("CreateToken returned error: %v", err)
	}

	if _, err := ParseToken(token + "x"); err == nil {
		t.Error("tampered token parsed")
	}

	t.Setenv("JWT_SECRET", "different-secret")
	if _, err := ParseToken(token); err == nil {
		t.Error("token signed with another secret parsed")
	}
}
