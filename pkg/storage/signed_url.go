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

var (
	ErrTokenMalformed = errors.New("malformed download token")
	ErrTokenSignature = errors.New("invalid download token signature")
	ErrTokenExpired   = errors.New("download token expired")
)

// DownloadGrant is the payload embedded in a signed download token.
type DownloadGrant struct {
	ExportID  string
	Key       string
	ExpiresAt time.Time
}

// URLSigner issues HMAC signed, expiring download tokens for stored exports.
type URLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewURLSigner constructs a signer with the provided secret and TTL.
func NewURLSigner(secret string, ttl time.Duration) *URLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &URLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token granting access to key on behalf of exportID.
func (s *URLSigner) Sign(exportID, key string) (string, time.Time, error) {
	if exportID == "" || key == "" {
		return "", time.Time{}, fmt.Errorf("export id and key required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	encodedKey := base64.RawURLEncoding.EncodeToString([]byte(key))
	token := strings.Join([]string{exportID, exp, encodedKey, s.mac(exportID, exp, encodedKey)}, ".")
	return token, expiresAt, nil
}

// Verify validates a token and returns the embedded grant.
func (s *URLSigner) Verify(token string) (*DownloadGrant, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return nil, ErrTokenMalformed
	}
	exportID, exp, encodedKey, signature := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.mac(exportID, exp, encodedKey)), []byte(signature)) {
		return nil, ErrTokenSignature
	}
	unix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return nil, ErrTokenMalformed
	}
	key, err := base64.RawURLEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, ErrTokenMalformed
	}
	expiresAt := time.Unix(unix, 0)
	if !s.now().Before(expiresAt) {
		return nil, ErrTokenExpired
	}
	return &DownloadGrant{ExportID: exportID, Key: string(key), ExpiresAt: expiresAt}, nil
}

func (s *URLSigner) mac(exportID, exp, encodedKey string) string {
	h := hmac.New(sha256.New, s.secret)
	_, _ = h.Write([]byte(exportID + "|" + exp + "|" + encodedKey))
	return hex.EncodeToString(h.Sum(nil))
}
