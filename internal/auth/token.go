package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"pingplatform/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	AccountID string             `json:"aid"`
	Role      models.Role        `json:"role"`
	Kind      models.SessionKind `json:"kind"`
	DeviceID  string             `json:"dev"`
	jwt.RegisteredClaims
}

// Tokens signs and parses the derived session token. Tokens carry no
// expiry; revocation is done by deleting the persisted copy.
type Tokens struct {
	key []byte
	now func() time.Time
}

func NewTokens(signingKey string, now func() time.Time) *Tokens {
	if now == nil {
		now = time.Now
	}
	return &Tokens{key: []byte(signingKey), now: now}
}

func (t *Tokens) Issue(acct models.Account, kind models.SessionKind, deviceID string) (string, error) {
	claims := &Claims{
		AccountID: acct.ID,
		Role:      acct.Role,
		Kind:      kind,
		DeviceID:  deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Subject:  acct.ID,
			IssuedAt: jwt.NewNumericDate(t.now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (t *Tokens) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (any, error) {
		return t.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.AccountID == "" || claims.DeviceID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
