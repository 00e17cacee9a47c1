package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidToken = errors.New("invalid auth token")

// HMACStrategy implements auth token creation/verification using HMAC signatures.
// A token is base64("subject:expires:signature"); subjects must not contain ':'.
type HMACStrategy struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewHMACStrategy builds HMACStrategy with provided secret and options.
func NewHMACStrategy(secret string, opts Options) *HMACStrategy {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &HMACStrategy{secret: []byte(secret), ttl: ttl, now: now}
}

// IssueToken generates signed token for the subject.
func (s *HMACStrategy) IssueToken(subject string) (string, error) {
	if subject == "" || strings.Contains(subject, ":") {
		return "", fmt.Errorf("issue token: bad subject %q", subject)
	}
	expires := s.now().Add(s.ttl).Unix()
	payload := fmt.Sprintf("%s:%d", subject, expires)
	token := fmt.Sprintf("%s:%s", payload, s.sign(payload))
	return base64.RawURLEncoding.EncodeToString([]byte(token)), nil
}

// ParseToken validates token and returns its subject.
func (s *HMACStrategy) ParseToken(token string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", ErrInvalidToken
	}

	parts := strings.Split(string(raw), ":")
	if len(parts) != 3 || parts[0] == "" {
		return "", ErrInvalidToken
	}

	payload := parts[0] + ":" + parts[1]
	if !hmac.Equal([]byte(s.sign(payload)), []byte(parts[2])) {
		return "", ErrInvalidToken
	}

	expires, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}
	if !s.now().Before(time.Unix(expires, 0)) {
		return "", ErrInvalidToken
	}

	return parts[0], nil
}

func (s *HMACStrategy) Name() string {
	return "hmac"
}

func (s *HMACStrategy) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
