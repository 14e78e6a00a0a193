package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/ericfisherdev/fanquiz/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Codec = (*Codec)(nil)

const (
	tokenVersion   byte = 1
	commitmentSize      = sha256.Size
)

var (
	// ErrMalformedToken is returned for tokens that are not valid base64 or are too short.
	ErrMalformedToken = errors.New("malformed ciphertext token")

	// ErrIntegrity is returned when a token was sealed under another key or altered.
	ErrIntegrity = errors.New("ciphertext failed integrity check")

	// ErrPayload is returned when a token opens but does not hold a JSON document.
	ErrPayload = errors.New("decrypted payload is not valid JSON")
)

// tokenEncoding rejects non-canonical trailing bits so every altered character is detected.
var tokenEncoding = base64.URLEncoding.Strict()

// Codec seals JSON documents with AES-256-GCM. Each token commits to the key:
// an HMAC over the version and nonce, keyed separately from the cipher, is
// verified before the ciphertext is opened.
//
// Token layout before base64url: version(1) || commitment(32) || nonce(12) || ciphertext || tag(16).
type Codec struct {
	aead      cipher.AEAD
	commitKey []byte
}

// NewCodec splits the master key into an encryption key and a commitment key with HKDF-SHA256.
func NewCodec(masterKey []byte) (*Codec, error) {
	if len(masterKey) != KeySize {
		return nil, fmt.Errorf("master key is %d bytes, want %d", len(masterKey), KeySize)
	}

	encKey := make([]byte, KeySize)
	commitKey := make([]byte, KeySize)
	kdf := hkdf.New(sha256.New, masterKey, nil, []byte("fanquiz question codec v1"))
	if _, err := io.ReadFull(kdf, encKey); err != nil {
		return nil, fmt.Errorf("derive encryption key: %w", err)
	}
	if _, err := io.ReadFull(kdf, commitKey); err != nil {
		return nil, fmt.Errorf("derive commitment key: %w", err)
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}

	return &Codec{aead: aead, commitKey: commitKey}, nil
}

// Encrypt JSON-encodes v and seals it into a token.
func (c *Codec) Encrypt(v any) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	header := make([]byte, 0, 1+commitmentSize+len(nonce))
	header = append(header, tokenVersion)
	header = append(header, c.commitment(nonce)...)
	header = append(header, nonce...)

	// The header is authenticated as associated data.
	sealed := c.aead.Seal(nil, nonce, plaintext, header)
	return tokenEncoding.EncodeToString(append(header, sealed...)), nil
}

// Decrypt opens token and JSON-decodes the plaintext into v.
func (c *Codec) Decrypt(token string, v any) error {
	data, err := tokenEncoding.DecodeString(token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	nonceSize := c.aead.NonceSize()
	headerSize := 1 + commitmentSize + nonceSize
	if len(data) < headerSize+c.aead.Overhead() {
		return fmt.Errorf("%w: too short", ErrMalformedToken)
	}
	if data[0] != tokenVersion {
		return fmt.Errorf("%w: unknown version %d", ErrMalformedToken, data[0])
	}

	header := data[:headerSize]
	commit := header[1 : 1+commitmentSize]
	nonce := header[1+commitmentSize:]

	if !hmac.Equal(commit, c.commitment(nonce)) {
		return ErrIntegrity
	}

	plaintext, err := c.aead.Open(nil, nonce, data[headerSize:], header)
	if err != nil {
		return ErrIntegrity
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("%w: %v", ErrPayload, err)
	}
	return nil
}

func (c *Codec) commitment(nonce []byte) []byte {
	mac := hmac.New(sha256.New, c.commitKey)
	mac.Write([]byte{tokenVersion})
	mac.Write(nonce)
	return mac.Sum(nil)
}
