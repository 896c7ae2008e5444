package main

import (
	"encoding/hex"
	"fmt"

	"github.com/xtesports/xtesports/internal/util/idgen"
)

const secretKeyLen = 32

// Secrets are kept apart from options, so that the options file can be shared.
type Secrets struct {
	SessionKey        string `toml:"session-key"`
	CSRFKey           string `toml:"csrf-key"`
	StripeKey         string `toml:"stripe-key,omitempty"`
	SMTPPassword      string `toml:"smtp-password,omitempty"`
	ResendKey         string `toml:"resend-key,omitempty"`
	AdminPassword     string `toml:"admin-password,omitempty"`
	S3SecretAccessKey string `toml:"s3-secret-access-key,omitempty"`

	// Set from SESSION_SECRET. It is used as is and never written back.
	sessionSecret string
}

func genKey() (string, error) {
	key, err := idgen.SecureKey(secretKeyLen)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// GenerateMissing fills the keys that are not set yet. It reports whether anything changed.
func (s *Secrets) GenerateMissing() (bool, error) {
	changed := false
	for _, k := range []*string{&s.SessionKey, &s.CSRFKey} {
		if *k != "" {
			continue
		}
		v, err := genKey()
		if err != nil {
			return false, fmt.Errorf("generate key: %w", err)
		}
		*k = v
		changed = true
	}
	return changed, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	if len(key) < 16 {
		return nil, fmt.Errorf("key is too short")
	}
	return key, nil
}

func (s *Secrets) sessionKey() ([]byte, error) {
	if s.sessionSecret != "" {
		return []byte(s.sessionSecret), nil
	}
	return decodeKey(s.SessionKey)
}

func (s *Secrets) csrfKey() ([]byte, error) {
	key, err := decodeKey(s.CSRFKey)
	if err != nil {
		return nil, err
	}
	if len(key) != secretKeyLen {
		return nil, fmt.Errorf("csrf key must have %v bytes", secretKeyLen)
	}
	return key, nil
}
