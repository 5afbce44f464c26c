package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Link verification failures.
var (
	ErrLinkMalformed = errors.New("malformed download link")
	ErrLinkSignature = errors.New("download link signature mismatch")
	ErrLinkExpired   = errors.New("download link expired")
)

// LinkSigner issues and verifies expiring download tokens. A token binds an
// owner id to a stored file name.
type LinkSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewLinkSigner constructs a signer. A non-positive ttl defaults to one hour.
func NewLinkSigner(secret string, ttl time.Duration) *LinkSigner {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &LinkSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL reports how long issued links stay valid.
func (s *LinkSigner) TTL() time.Duration {
	return s.ttl
}

// Sign returns a token for owner and name plus its expiry.
func (s *LinkSigner) Sign(owner, name string) (string, time.Time, error) {
	if owner == "" || name == "" {
		return "", time.Time{}, fmt.Errorf("owner and name required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	encodedOwner := base64.RawURLEncoding.EncodeToString([]byte(owner))
	encodedName := base64.RawURLEncoding.EncodeToString([]byte(name))
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	token := strings.Join([]string{encodedOwner, exp, encodedName, s.sign(encodedOwner, exp, encodedName)}, ".")
	return token, expiresAt, nil
}

// Verify checks the signature and expiry and returns the bound owner and name.
func (s *LinkSigner) Verify(token string) (owner, name string, expiresAt time.Time, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", time.Time{}, ErrLinkMalformed
	}
	expected := s.sign(parts[0], parts[1], parts[2])
	if !hmac.Equal([]byte(expected), []byte(parts[3])) {
		return "", "", time.Time{}, ErrLinkSignature
	}
	unix, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", "", time.Time{}, ErrLinkMalformed
	}
	expiresAt = time.Unix(unix, 0)
	if s.now().After(expiresAt) {
		return "", "", time.Time{}, ErrLinkExpired
	}
	rawOwner, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", "", time.Time{}, ErrLinkMalformed
	}
	rawName, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return "", "", time.Time{}, ErrLinkMalformed
	}
	return string(rawOwner), string(rawName), expiresAt, nil
}

func (s *LinkSigner) sign(owner, exp, name string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(owner + "|" + exp + "|" + name))
	return hex.EncodeToString(mac.Sum(nil))
}
