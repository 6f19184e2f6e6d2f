// Package session keeps the mock login state. Each device owns two
// persisted entries per session kind: the JSON account and the derived
// token, under "<prefix>_user"/"<prefix>_token" for users and
// "<prefix>_admin_user"/"<prefix>_admin_token" for admins.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pingplatform/internal/models"
	"pingplatform/internal/store"
)

var ErrNoSession = errors.New("no session")

// KV is the persisted key-value layout. *store.Store implements it.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

type Session struct {
	User  models.Account `json:"user"`
	Token string         `json:"token"`
}

type Service interface {
	GetSession(ctx context.Context, deviceID string, kind models.SessionKind) (Session, error)
	SetSession(ctx context.Context, deviceID string, kind models.SessionKind, s Session) error
	ClearSession(ctx context.Context, deviceID string, kind models.SessionKind) error
}

type KVService struct {
	kv     KV
	prefix string
}

func NewKVService(kv KV, prefix string) *KVService {
	return &KVService{kv: kv, prefix: prefix}
}

// Keys returns the user and token keys for a device and kind.
func (s *KVService) Keys(deviceID string, kind models.SessionKind) (userKey, tokenKey string) {
	base := s.prefix
	if kind == models.KindAdmin {
		base += "_admin"
	}
	return deviceID + ":" + base + "_user", deviceID + ":" + base + "_token"
}

func (s *KVService) GetSession(ctx context.Context, deviceID string, kind models.SessionKind) (Session, error) {
	uk, tk := s.Keys(deviceID, kind)
	rawUser, err := s.kv.Get(ctx, uk)
	if errors.Is(err, store.ErrNotFound) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("read %s: %w", uk, err)
	}
	token, err := s.kv.Get(ctx, tk)
	if errors.Is(err, store.ErrNotFound) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("read %s: %w", tk, err)
	}
	var out Session
	if err := json.Unmarshal([]byte(rawUser), &out.User); err != nil {
		return Session{}, fmt.Errorf("decode %s: %w", uk, err)
	}
	out.Token = token
	return out, nil
}

func (s *KVService) SetSession(ctx context.Context, deviceID string, kind models.SessionKind, sess Session) error {
	uk, tk := s.Keys(deviceID, kind)
	b, err := json.Marshal(sess.User)
	if err != nil {
		return err
	}
	if err := s.kv.Put(ctx, uk, string(b)); err != nil {
		return fmt.Errorf("write %s: %w", uk, err)
	}
	if err := s.kv.Put(ctx, tk, sess.Token); err != nil {
		return fmt.Errorf("write %s: %w", tk, err)
	}
	return nil
}

func (s *KVService) ClearSession(ctx context.Context, deviceID string, kind models.SessionKind) error {
	uk, tk := s.Keys(deviceID, kind)
	return s.kv.Delete(ctx, uk, tk)
}
