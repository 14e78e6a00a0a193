// Package crypt derives the master key and seals question payloads with it.
package crypt

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the length in bytes of the master key.
	KeySize = 32

	saltSize      = 32
	kdfIterations = 100_000
)

// ErrPassphraseRequired is returned on first start when no key file exists
// and no passphrase was supplied to derive one.
var ErrPassphraseRequired = errors.New("passphrase required to derive master key: set FANQUIZ_PASSPHRASE")

// LoadOrCreateKey returns the master key stored at keyPath. When the file does
// not exist yet, it derives a key from passphrase with PBKDF2-HMAC-SHA256 over
// a fresh random salt, writes the base64 key to keyPath and the raw salt to
// saltPath, and returns the key.
//
// Once the key file exists the passphrase is ignored. Changing the passphrase
// has no effect until the key file is removed, and removing it makes existing
// ciphertext unreadable.
func LoadOrCreateKey(keyPath, saltPath, passphrase string) ([]byte, error) {
	data, err := os.ReadFile(keyPath)
	if err == nil {
		return decodeKey(data)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	if passphrase == "" {
		return nil, ErrPassphraseRequired
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	key := DeriveKey(passphrase, salt)

	if err := os.WriteFile(keyPath, []byte(base64.URLEncoding.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}
	if err := os.WriteFile(saltPath, salt, 0o600); err != nil {
		return nil, fmt.Errorf("write salt file: %w", err)
	}

	return key, nil
}

// DeriveKey stretches passphrase into a KeySize-byte key.
func DeriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, kdfIterations, KeySize, sha256.New)
}

func decodeKey(data []byte) ([]byte, error) {
	key, err := base64.URLEncoding.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("decode key file: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("key file holds %d bytes, want %d", len(key), KeySize)
	}
	return key, nil
}

// SubKey derives an independent 32-byte key for purpose from the master key,
// so other components never hold the key that seals questions.
func SubKey(masterKey []byte, purpose string) ([]byte, error) {
	if len(masterKey) != KeySize {
		return nil, fmt.Errorf("master key is %d bytes, want %d", len(masterKey), KeySize)
	}

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, nil, []byte(purpose)), key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", purpose, err)
	}
	return key, nil
}
