package auth

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// sealedPrefix marks a sealed payload so plaintext files can be told apart.
const sealedPrefix = "enc:v1:"

// ErrMalformedSealed is returned for payloads that are not valid sealed data.
var ErrMalformedSealed = errors.New("sealed payload is malformed")

// Sealer encrypts small secrets at rest with AES-GCM.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer builds a sealer from a 16, 24 or 32 byte key.
func NewSealer(key string) (*Sealer, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("encryption key must be 16, 24, or 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

// IsSealed reports whether data carries the sealed payload prefix.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(data), []byte(sealedPrefix))
}

// Seal returns prefix + base64(nonce || ciphertext).
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, plaintext, nil)

	out := make([]byte, len(sealedPrefix)+base64.RawURLEncoding.EncodedLen(len(sealed)))
	copy(out, sealedPrefix)
	base64.RawURLEncoding.Encode(out[len(sealedPrefix):], sealed)
	return out, nil
}

// Open reverses Seal. A wrong key fails authentication.
func (s *Sealer) Open(data []byte) ([]byte, error) {
	data = bytes.TrimSpace(data)
	if !bytes.HasPrefix(data, []byte(sealedPrefix)) {
		return nil, ErrMalformedSealed
	}
	encoded := data[len(sealedPrefix):]
	raw := make([]byte, base64.RawURLEncoding.DecodedLen(len(encoded)))
	n, err := base64.RawURLEncoding.Decode(raw, encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSealed, err)
	}
	raw = raw[:n]
	nonceSize := s.aead.NonceSize()
	if len(raw) < nonceSize {
		return nil, ErrMalformedSealed
	}
	plaintext, err := s.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("open sealed payload: %w", err)
	}
	return plaintext, nil
}
