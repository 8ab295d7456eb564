package services

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

// SessionKeySize is the AES-256 key length.
const SessionKeySize = 32

// SessionSealer encrypts the session ID carried in the browser cookie.
// Secrets never leave the process; the cookie only names the live session.
type SessionSealer struct {
	key []byte
}

// NewSessionSealer uses key when it is SessionKeySize bytes long and
// otherwise generates a random one, so sessions end on restart.
func NewSessionSealer(key string) *SessionSealer {
	if len(key) == SessionKeySize {
		return &SessionSealer{key: []byte(key)}
	}
	newKey := make([]byte, SessionKeySize)
	if _, err := io.ReadFull(rand.Reader, newKey); err != nil {
		panic("failed to generate random key")
	}
	return &SessionSealer{key: newKey}
}

// Seal encrypts value into a URL-safe string.
func (s *SessionSealer) Seal(value string) (string, error) {
	gcm, err := s.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(value), nil)
	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

// Open reverses Seal.
func (s *SessionSealer) Open(sealed string) (string, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(sealed)
	if err != nil {
		return "", err
	}

	gcm, err := s.aead()
	if err != nil {
		return "", err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return "", errors.New("malformed ciphertext")
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func (s *SessionSealer) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
