package auth

import (
	"testing"
	"time"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the password")
	}
	if err := CheckPassword(hash, "correct horse battery staple"); err != nil {
		t.Fatalf("CheckPassword rejected the right password: %v", err)
	}
	if err := CheckPassword(hash, "wrong password"); err == nil {
		t.Fatal("CheckPassword accepted the wrong password")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	claims := Claims{
		UserID:     "user-1",
		OrgID:      "org-1",
		EmployeeID: "emp-1",
		Role:       RoleEmployee,
	}

	token, err := GenerateToken("secret", claims, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	parsed, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if parsed.UserID != "user-1" || parsed.OrgID != "org-1" || parsed.EmployeeID != "emp-1" || parsed.Role != RoleEmployee {
		t.Fatalf("claims mismatch: %+v", parsed)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: "user-1", OrgID: "org-1", Role: RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := ParseToken("other-secret", token); err == nil {
		t.Fatal("token with wrong secret must be rejected")
	}
}

func TestTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: "user-1", OrgID: "org-1", Role: RoleAdmin}, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expired token must be rejected")
	}
}
