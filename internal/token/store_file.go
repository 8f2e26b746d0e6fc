package token

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

const saltSize = 16

// FileStore implements Store as a single encrypted file, standing in for the
// OS secure storage the mobile client uses. The token is sealed with
// XChaCha20-Poly1305 under a key derived from the configured passphrase, so a
// copied token file is useless without it.
type FileStore struct {
	path       string
	passphrase string
}

// NewFileStore creates a store writing to path. The parent directory is
// created on first save.
func NewFileStore(path, passphrase string) *FileStore {
	return &FileStore{path: path, passphrase: passphrase}
}

func (s *FileStore) Save(ctx context.Context, token string) error {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	aead, err := s.aead(salt)
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}

	blob := make([]byte, 0, saltSize+len(nonce)+len(token)+aead.Overhead())
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = aead.Seal(blob, nonce, []byte(token), []byte(Key))

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	// Write-then-rename so a crash mid-save never leaves a half-written file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace token file: %w", err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context) (string, error) {
	blob, err := os.ReadFile(s.path)
	if err != nil {
		// Missing or unreadable both mean "no session".
		return "", nil
	}
	if len(blob) < saltSize+chacha20poly1305.NonceSizeX {
		return "", nil
	}
	aead, err := s.aead(blob[:saltSize])
	if err != nil {
		return "", nil
	}
	nonce := blob[saltSize : saltSize+aead.NonceSize()]
	plaintext, err := aead.Open(nil, nonce, blob[saltSize+aead.NonceSize():], []byte(Key))
	if err != nil {
		// Corrupted or sealed under a different passphrase: treat as absent.
		return "", nil
	}
	return string(plaintext), nil
}

func (s *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

func (s *FileStore) aead(salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(s.passphrase), salt, 1<<15, 8, 1, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return chacha20poly1305.NewX(key)
}
