package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"pingplatform/internal/models"
)

// Mock credentials are hashed once at startup, so the cost stays low.
const (
	argonMemory      = 16 * 1024
	argonIterations  = 1
	argonParallelism = 1
	argonKeyLen      = 32
	saltLen          = 16
)

func HashPassword(pw string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(pw), salt, argonIterations, argonMemory, argonParallelism, argonKeyLen)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		argonMemory,
		argonIterations,
		argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

func VerifyPassword(encoded, pw string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}
	var mem, it uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &it, &par); err != nil {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}
	other := argon2.IDKey([]byte(pw), salt, it, mem, par, uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, other) == 1
}

type hashedCredential struct {
	models.Credential
	hash string
}

// Credentials is the hardcoded login list with passwords replaced by
// argon2id hashes. Usernames compare case-insensitively.
type Credentials struct {
	entries []hashedCredential
}

func NewCredentials(list []models.Credential) (*Credentials, error) {
	out := &Credentials{entries: make([]hashedCredential, 0, len(list))}
	for _, c := range list {
		h, err := HashPassword(c.Password)
		if err != nil {
			return nil, fmt.Errorf("hash credential %q: %w", c.Username, err)
		}
		c.Password = ""
		out.entries = append(out.entries, hashedCredential{Credential: c, hash: h})
	}
	return out, nil
}

// Match returns the credential of the given kind whose username and
// password both match.
func (c *Credentials) Match(kind models.SessionKind, username, password string) (models.Credential, bool) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.Credential{}, false
	}
	for _, e := range c.entries {
		if e.Kind != kind || !strings.EqualFold(e.Username, username) {
			continue
		}
		if VerifyPassword(e.hash, password) {
			return e.Credential, true
		}
		return models.Credential{}, false
	}
	return models.Credential{}, false
}
