package pocketbase

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
)

// CredentialKind tells whether a credential was issued to an admin or to an
// auth collection record.
type CredentialKind int

// Credential kinds.
const (
	CredentialAdmin CredentialKind = iota + 1
	CredentialRecord
)

// String returns the textual kind.
func (k CredentialKind) String() string {
	switch k {
	case CredentialAdmin:
		return "admin"
	case CredentialRecord:
		return "record"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k CredentialKind) MarshalText() ([]byte, error) {
	if k != CredentialAdmin && k != CredentialRecord {
		return nil, fmt.Errorf("%w: %d", constants.ErrUnknownKind, int(k))
	}

	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *CredentialKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "admin":
		*k = CredentialAdmin
	case "record":
		*k = CredentialRecord
	default:
		return fmt.Errorf("%w: %q", constants.ErrUnknownKind, string(text))
	}

	return nil
}

// Credential is an auth token plus the identity it was issued for.
type Credential struct {
	Token string          `json:"token"`
	Model json.RawMessage `json:"model,omitempty"`
	Kind  CredentialKind  `json:"kind"`
}

// ExpiresAt returns the exp claim of the token. The signature is not
// verified: only the server can do that.
func (c Credential) ExpiresAt() (time.Time, error) {
	claims := jwt.MapClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(c.Token, claims)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", constants.ErrInvalidJWTFormat, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", constants.ErrInvalidJWTFormat, err)
	}

	if exp == nil {
		return time.Time{}, constants.ErrNoExpirationClaim
	}

	return exp.Time, nil
}

// IsValid reports whether the token is a JWT that does not expire within the
// expiration buffer.
func (c Credential) IsValid() bool {
	if c.Token == "" {
		return false
	}

	expiresAt, err := c.ExpiresAt()
	if err != nil {
		return false
	}

	return time.Now().Add(constants.TokenExpirationBuffer).Before(expiresAt)
}

// Admin decodes the identity of an admin credential.
func (c Credential) Admin() (*Admin, error) {
	var admin Admin

	err := json.Unmarshal(c.Model, &admin)
	if err != nil {
		return nil, &SerializationError{Op: "decode admin model", Body: c.Model, Err: err}
	}

	return &admin, nil
}

// Record decodes the identity of a record credential.
func (c Credential) Record() (*Record, error) {
	var record Record

	err := json.Unmarshal(c.Model, &record)
	if err != nil {
		return nil, &SerializationError{Op: "decode record model", Body: c.Model, Err: err}
	}

	return &record, nil
}

// Storage persists the active credential across client instances.
// Load returns nil and no error when nothing is stored.
type Storage interface {
	Load() (*Credential, error)
	Save(cred Credential) error
	Clear() error
}

// MemoryStorage keeps the credential in process memory.
type MemoryStorage struct {
	mu   sync.RWMutex
	cred *Credential
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Load returns the stored credential.
func (s *MemoryStorage) Load() (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cred == nil {
		return nil, nil
	}

	cred := *s.cred

	return &cred, nil
}

// Save stores cred.
func (s *MemoryStorage) Save(cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cred = &cred

	return nil
}

// Clear removes the stored credential.
func (s *MemoryStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cred = nil

	return nil
}
