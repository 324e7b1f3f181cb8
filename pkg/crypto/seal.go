// Package crypto seals small secret files (the Instagram cookie cache) at rest.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	// File format magic bytes
	magic = "LGCK"

	// Argon2id parameters (OWASP recommended)
	argonTime    = 3
	argonMemory  = 64 * 1024 // 64 MB
	argonThreads = 4
	argonKeyLen  = 32 // AES-256

	saltSize  = 32
	nonceSize = 12 // GCM standard nonce size

	headerSize = len(magic) + saltSize + nonceSize
)

var (
	// ErrNotSealed is returned when the blob does not carry the sealed-file magic.
	ErrNotSealed = errors.New("not a sealed linkgrab file")

	// ErrOpenFailed is returned on wrong passphrase or corrupted data.
	ErrOpenFailed = errors.New("open failed: wrong passphrase or corrupted data")
)

// deriveKey derives an AES-256 key from a passphrase using Argon2id.
func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// Seal encrypts plaintext with a passphrase-derived key. The returned blob
// is self-contained: magic + salt + nonce + ciphertext.
func Seal(plaintext []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	blob := make([]byte, 0, headerSize+len(plaintext)+gcm.Overhead())
	blob = append(blob, magic...)
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = gcm.Seal(blob, nonce, plaintext, nil)
	return blob, nil
}

// Open decrypts a blob produced by Seal.
func Open(blob []byte, passphrase string) ([]byte, error) {
	if len(blob) < headerSize {
		return nil, ErrNotSealed
	}
	if string(blob[:len(magic)]) != magic {
		return nil, ErrNotSealed
	}

	salt := blob[len(magic) : len(magic)+saltSize]
	nonce := blob[len(magic)+saltSize : headerSize]
	ciphertext := blob[headerSize:]

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrOpenFailed
	}
	return plaintext, nil
}

// IsSealed reports whether the blob carries the sealed-file magic.
func IsSealed(blob []byte) bool {
	return len(blob) >= len(magic) && string(blob[:len(magic)]) == magic
}
