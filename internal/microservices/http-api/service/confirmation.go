package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"yamdb/internal/microservices/http-api/models"

	"golang.org/x/crypto/hkdf"
)

var (
	ErrInvalidCode = errors.New("confirmation code is invalid")
	ErrExpiredCode = errors.New("confirmation code has expired")
)

const (
	codeKeyInfo   = "yamdb confirmation code v1"
	codeMACLength = 20
	codeClockSkew = time.Minute
)

// ConfirmationCodes derives stateless one-time codes of the form
// "<issued-at, base36 unix seconds>-<truncated HMAC>". The MAC covers the user's
// id, username, email and ConfirmationVersion, so advancing the version or
// changing the email makes every earlier code stale.
type ConfirmationCodes struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewConfirmationCodes(secret string, ttl time.Duration) (*ConfirmationCodes, error) {
	if secret == "" {
		return nil, errors.New("confirmation code secret is empty")
	}
	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(codeKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive confirmation key: %w", err)
	}
	return &ConfirmationCodes{key: key, ttl: ttl, now: time.Now}, nil
}

// Make returns a code for the user's current fingerprint.
func (c *ConfirmationCodes) Make(user *models.User) string {
	ts := strconv.FormatInt(c.now().Unix(), 36)
	return ts + "-" + c.sign(user, ts)
}

// Check returns ErrInvalidCode for malformed or foreign codes and ErrExpiredCode
// for codes older than the freshness window.
func (c *ConfirmationCodes) Check(user *models.User, code string) error {
	ts, mac, ok := strings.Cut(code, "-")
	if !ok || ts == "" || len(mac) != codeMACLength {
		return ErrInvalidCode
	}
	issued, err := strconv.ParseInt(ts, 36, 64)
	if err != nil {
		return ErrInvalidCode
	}
	if !hmac.Equal([]byte(c.sign(user, ts)), []byte(mac)) {
		return ErrInvalidCode
	}

	issuedAt := time.Unix(issued, 0)
	now := c.now()
	if issuedAt.After(now.Add(codeClockSkew)) {
		return ErrInvalidCode
	}
	if now.Sub(issuedAt) > c.ttl {
		return ErrExpiredCode
	}
	return nil
}

func (c *ConfirmationCodes) sign(user *models.User, ts string) string {
	mac := hmac.New(sha256.New, c.key)
	fmt.Fprintf(mac, "%s|%s|%s|%d|%s", user.ID, user.Username, user.Email, user.ConfirmationVersion, ts)
	return hex.EncodeToString(mac.Sum(nil))[:codeMACLength]
}
