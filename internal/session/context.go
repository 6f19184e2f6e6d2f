package session

import (
	"context"
	"errors"
	"log"
	"strings"

	"pingplatform/internal/auth"
	"pingplatform/internal/models"
)

// Accounts is the source of account records. *catalog.Catalog implements it.
type Accounts interface {
	Account(id string) (models.Account, error)
	UpdateAccount(id string, fn func(a *models.Account)) (models.Account, error)
}

// Partial carries profile fields for UpdateUser. Empty fields are ignored.
type Partial struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Location string `json:"location"`
}

// AuthContext is the mock authentication context. Login failures carry no
// detail; errors are returned only when the persisted layout fails.
type AuthContext struct {
	sessions Service
	creds    *auth.Credentials
	tokens   *auth.Tokens
	accounts Accounts
}

func NewAuthContext(sessions Service, creds *auth.Credentials, tokens *auth.Tokens, accounts Accounts) *AuthContext {
	return &AuthContext{sessions: sessions, creds: creds, tokens: tokens, accounts: accounts}
}

// Login opens a session when the credentials match an active account.
// Pending, suspended and rejected accounts are refused like a mismatch.
func (a *AuthContext) Login(ctx context.Context, deviceID string, kind models.SessionKind, username, password string) (bool, error) {
	cred, ok := a.creds.Match(kind, username, password)
	if !ok {
		return false, nil
	}
	acct, err := a.accounts.Account(cred.AccountID)
	if err != nil {
		log.Printf("login credential without account username=%s account_id=%s", cred.Username, cred.AccountID)
		return false, nil
	}
	if acct.Status != models.AccountActive {
		log.Printf("login refused account=%s status=%s", acct.ID, acct.Status)
		return false, nil
	}
	token, err := a.tokens.Issue(acct, kind, deviceID)
	if err != nil {
		return false, err
	}
	if err := a.sessions.SetSession(ctx, deviceID, kind, Session{User: acct, Token: token}); err != nil {
		return false, err
	}
	return true, nil
}

func (a *AuthContext) Logout(ctx context.Context, deviceID string, kind models.SessionKind) error {
	return a.sessions.ClearSession(ctx, deviceID, kind)
}

func (a *AuthContext) Current(ctx context.Context, deviceID string, kind models.SessionKind) (Session, error) {
	return a.sessions.GetSession(ctx, deviceID, kind)
}

func (a *AuthContext) IsAuthenticated(ctx context.Context, deviceID string, kind models.SessionKind) bool {
	_, err := a.sessions.GetSession(ctx, deviceID, kind)
	return err == nil
}

// UpdateUser merges the non-empty fields of p into the stored account and
// re-persists the session.
func (a *AuthContext) UpdateUser(ctx context.Context, deviceID string, kind models.SessionKind, p Partial) (models.Account, error) {
	sess, err := a.sessions.GetSession(ctx, deviceID, kind)
	if err != nil {
		return models.Account{}, err
	}
	apply := func(acct *models.Account) {
		if v := strings.TrimSpace(p.Name); v != "" {
			acct.Name = v
		}
		if v := strings.TrimSpace(p.Email); v != "" {
			acct.Email = v
		}
		if v := strings.TrimSpace(p.Location); v != "" {
			acct.Location = v
		}
	}
	updated, err := a.accounts.UpdateAccount(sess.User.ID, apply)
	if err != nil {
		return models.Account{}, err
	}
	sess.User = updated
	if err := a.sessions.SetSession(ctx, deviceID, kind, sess); err != nil {
		return models.Account{}, err
	}
	return updated, nil
}

// ValidateToken parses raw and accepts it only while it equals the
// token persisted for its device and kind.
func (a *AuthContext) ValidateToken(ctx context.Context, raw string) (*auth.Claims, error) {
	claims, err := a.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	sess, err := a.sessions.GetSession(ctx, claims.DeviceID, claims.Kind)
	if errors.Is(err, ErrNoSession) {
		return nil, auth.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if sess.Token != raw {
		return nil, auth.ErrInvalidToken
	}
	return claims, nil
}
