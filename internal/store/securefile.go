package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"
)

// SecureFileStore seals each blob with XChaCha20-Poly1305 before it
// touches disk. It stands in for the platform secure store used on
// devices: same key layout as FileStore, but values are unreadable
// without the configured key.
type SecureFileStore struct {
	dir  string
	aead interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
}

// NewSecureFileStore derives a sealing key from the configured secret
// and prepares the base directory.
func NewSecureFileStore(dir, key string) (*SecureFileStore, error) {
	if key == "" {
		return nil, errors.New("secure store requires a non-empty key")
	}
	if dir == "" {
		dir = "./.schoolapp"
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	sum := sha256.Sum256([]byte(key))
	aead, err := chacha20poly1305.NewX(sum[:])
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	return &SecureFileStore{dir: dir, aead: aead}, nil
}

func (s *SecureFileStore) Get(_ context.Context, key string) ([]byte, error) {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("read store key %s: %w", key, err)
	}
	if len(raw) < chacha20poly1305.NonceSizeX {
		return nil, fmt.Errorf("store key %s: sealed value too short", key)
	}
	nonce, sealed := raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:]
	plain, err := s.aead.Open(nil, nonce, sealed, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("unseal store key %s: %w", key, err)
	}
	return plain, nil
}

func (s *SecureFileStore) Set(_ context.Context, key string, value []byte) error {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	sealed := s.aead.Seal(nil, nonce, value, []byte(key))
	if err := os.WriteFile(s.path(key), append(nonce, sealed...), 0o600); err != nil {
		return fmt.Errorf("write store key %s: %w", key, err)
	}
	return nil
}

func (s *SecureFileStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete store key %s: %w", key, err)
	}
	return nil
}

func (s *SecureFileStore) Close() error { return nil }

func (s *SecureFileStore) path(key string) string {
	return filepath.Join(s.dir, key+".bin")
}
