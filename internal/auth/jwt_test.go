package auth

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	token, exp, err := Issue("user-1", "teacher", "classhub", "test-key", time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if time.Until(exp) < 59*time.Minute {
		t.Errorf("expiry %v too soon", exp)
	}

	claims, err := Parse(token, "test-key", "classhub")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != "teacher" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.Subject != "user-1" {
		t.Errorf("subject = %q, want user-1", claims.Subject)
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	token, _, err := Issue("user-1", "teacher", "classhub", "test-key", time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := Parse(token, "other-key", "classhub"); err == nil {
		t.Fatal("token signed with a different key parsed")
	}
}

func TestParseRejectsIssuerMismatch(t *testing.T) {
	token, _, err := Issue("user-1", "teacher", "someone-else", "test-key", time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := Parse(token, "test-key", "classhub"); err == nil {
		t.Fatal("token from a different issuer parsed")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	token, _, err := Issue("user-1", "teacher", "classhub", "test-key", -time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := Parse(token, "test-key", "classhub"); err == nil {
		t.Fatal("expired token parsed")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("not.a.token", "test-key", "classhub"); err == nil {
		t.Fatal("garbage token parsed")
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "s3cret!" {
		t.Fatal("password stored in clear")
	}
	if !CheckPassword(hash, "s3cret!") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}
