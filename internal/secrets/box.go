package secrets

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

const sealedPrefix = "enc:"

var (
	ErrMissing   = errors.New("secrets: value is missing")
	ErrCorrupted = errors.New("secrets: value is corrupted")
	ErrBadKey    = errors.New("secrets: master key must be 32 base64-encoded bytes")
)

// Status is how a credential read went, as reported on the readiness endpoint.
type Status string

const (
	StatusOK        Status = "ok"
	StatusMissing   Status = "missing"
	StatusCorrupted Status = "corrupted"
)

// Box seals and opens provider credentials with XChaCha20-Poly1305.
type Box struct {
	aead cipher.AEAD
}

func NewBox(masterKey string) (*Box, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(masterKey))
	if err != nil || len(key) != chacha20poly1305.KeySize {
		return nil, ErrBadKey
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("secrets: init cipher: %w", err)
	}
	return &Box{aead: aead}, nil
}

func (b *Box) Seal(plain string) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("secrets: nonce: %w", err)
	}
	out := b.aead.Seal(nonce, nonce, []byte(plain), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open returns plain values unchanged and decrypts sealed ones. A nil Box cannot open a
// sealed value, which counts as corruption.
func (b *Box) Open(value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", ErrMissing
	}
	if !strings.HasPrefix(value, sealedPrefix) {
		return value, nil
	}
	if b == nil {
		return "", ErrCorrupted
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil || len(raw) < b.aead.NonceSize()+b.aead.Overhead() {
		return "", ErrCorrupted
	}
	nonce, ciphertext := raw[:b.aead.NonceSize()], raw[b.aead.NonceSize():]
	plain, err := b.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrCorrupted
	}
	return string(plain), nil
}

// Resolve opens value and classifies the outcome.
func Resolve(b *Box, value string) (string, Status) {
	plain, err := b.Open(value)
	switch {
	case err == nil:
		return plain, StatusOK
	case errors.Is(err, ErrMissing):
		return "", StatusMissing
	default:
		return "", StatusCorrupted
	}
}
