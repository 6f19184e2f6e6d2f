package auth

import (
	"errors"
	"testing"

	"pingplatform/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokens("this_is_a_valid_long_signing_key_123456", nil)
	acct := models.Account{ID: "usr-001", Role: models.RoleConsumer}
	raw, err := tokens.Issue(acct, models.KindUser, "dev-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := tokens.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.AccountID != "usr-001" || claims.Kind != models.KindUser || claims.DeviceID != "dev-1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenRejectsOtherKey(t *testing.T) {
	a := NewTokens("this_is_a_valid_long_signing_key_123456", nil)
	b := NewTokens("another_valid_long_signing_key_abcdefg", nil)
	raw, err := a.Issue(models.Account{ID: "usr-001"}, models.KindUser, "dev-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := b.Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := a.Parse("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}
