// Package signer holds API credentials and signs request records with HMAC-SHA256
// over their canonical JSON encoding.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"bitkub/internal/canonical"
)

// Signer is an immutable credential pair. The secret never leaves the value
// except as HMAC key material.
type Signer struct {
	key    string
	secret []byte
}

// New copies key and secret into a Signer.
func New(key, secret string) (*Signer, error) {
	if key == "" {
		return nil, errors.New("api key is required")
	}
	if secret == "" {
		return nil, errors.New("api secret is required")
	}
	return &Signer{
		key:    key,
		secret: []byte(secret),
	}, nil
}

// APIKey returns the public key sent in the X-BTK-APIKEY header.
func (s *Signer) APIKey() string {
	return s.key
}

// Sign returns the hex HMAC-SHA256 of the canonical encoding of record.
// The record must not yet contain its signature field.
func (s *Signer) Sign(record map[string]any) (string, error) {
	payload, err := canonical.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("canonical encode: %w", err)
	}
	return SignBytes(s.secret, payload), nil
}

// SignBytes computes the hex HMAC-SHA256 of payload keyed by secret.
func SignBytes(secret, payload []byte) string {
	h := hmac.New(sha256.New, secret)
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// String masks the key and omits the secret so a Signer is safe to log.
func (s *Signer) String() string {
	return fmt.Sprintf("Signer{Key:%s}", maskKey(s.key))
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
