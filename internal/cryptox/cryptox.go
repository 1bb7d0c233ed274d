// Package cryptox provides the small amount of cryptography the client
// needs: sealing a JSON-serializable value with AES-GCM and deriving the
// sealing key from a device secret with argon2id.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// ErrOpenFailed is returned when a sealed record cannot be decrypted,
// typically because the key or the stored bytes changed.
var ErrOpenFailed = errors.New("cannot open sealed record")

// DeriveKey derives a 32-byte AES key from a device secret and a
// purpose-specific salt using argon2id.
func DeriveKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, 32)
}

// RandBytes returns n cryptographically random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// SealJSON serializes v to JSON and encrypts it with AES-GCM under key.
// A fresh 12-byte nonce is generated per call and returned alongside the
// ciphertext. The key must be 16, 24, or 32 bytes long.
func SealJSON(v any, key []byte) (ciphertext, nonce []byte, err error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	nonce, err = RandBytes(gcm.NonceSize())
	if err != nil {
		return nil, nil, err
	}

	return gcm.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// OpenJSON decrypts ciphertext produced by SealJSON and unmarshals the
// plaintext into out. Returns ErrOpenFailed when authentication fails.
func OpenJSON(ciphertext, nonce, key []byte, out any) error {
	block, err := aes.NewCipher(key)
	if err != nil {
		return err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return ErrOpenFailed
	}

	return json.Unmarshal(plaintext, out)
}

// Wipe overwrites the contents of b with zeros. Useful for removing
// passwords and keys from memory after use. A nil slice is a no-op.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
