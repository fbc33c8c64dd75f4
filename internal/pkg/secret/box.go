// Package secret encrypts secret settings (API keys) before they are persisted.
package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var (
	ErrEmptyKey         = errors.New("secret: encryption key is required")
	ErrMalformedPayload = errors.New("secret: malformed ciphertext")
	ErrDecryptFailed    = errors.New("secret: decryption failed")
)

// Box seals and opens values with a key derived from the configured passphrase.
type Box struct {
	key [32]byte
}

// NewBox derives the box key from passphrase with HKDF-SHA256.
func NewBox(passphrase string) (*Box, error) {
	if passphrase == "" {
		return nil, ErrEmptyKey
	}

	b := &Box{}
	r := hkdf.New(sha256.New, []byte(passphrase), nil, []byte("raven-settings-secret"))
	if _, err := io.ReadFull(r, b.key[:]); err != nil {
		return nil, fmt.Errorf("secret: derive key: %w", err)
	}
	return b, nil
}

// Seal encrypts plaintext; the empty string stays empty so unset secrets remain unset.
func (b *Box) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("secret: read nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &b.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal.
func (b *Box) Open(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrMalformedPayload
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	out, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &b.key)
	if !ok {
		return "", ErrDecryptFailed
	}
	return string(out), nil
}
