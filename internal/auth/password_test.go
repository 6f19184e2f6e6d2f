package auth

import (
	"testing"

	"pingplatform/internal/models"
)

func TestHashVerify(t *testing.T) {
	h, err := HashPassword("secret-123")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if !VerifyPassword(h, "secret-123") {
		t.Fatalf("expected verify to pass")
	}
	if VerifyPassword(h, "wrong") {
		t.Fatalf("expected verify to fail")
	}
	if VerifyPassword("plain", "plain") {
		t.Fatalf("expected malformed hash to fail")
	}
}

func TestCredentialsMatchByKind(t *testing.T) {
	creds, err := NewCredentials([]models.Credential{
		{Username: "alice@ping.example", Password: "alice123", Kind: models.KindUser, AccountID: "usr-001"},
		{Username: "admin", Password: "admin123", Kind: models.KindAdmin, AccountID: "adm-001"},
	})
	if err != nil {
		t.Fatalf("credentials: %v", err)
	}
	c, ok := creds.Match(models.KindUser, "Alice@Ping.Example", "alice123")
	if !ok || c.AccountID != "usr-001" {
		t.Fatalf("expected alice to match, got %+v %v", c, ok)
	}
	if c.Password != "" {
		t.Fatalf("plaintext password must not be kept")
	}
	if _, ok := creds.Match(models.KindUser, "alice@ping.example", "nope"); ok {
		t.Fatalf("expected wrong password to fail")
	}
	if _, ok := creds.Match(models.KindUser, "admin", "admin123"); ok {
		t.Fatalf("admin credential must not open a user session")
	}
	if _, ok := creds.Match(models.KindAdmin, "admin", "admin123"); !ok {
		t.Fatalf("expected admin to match")
	}
}
