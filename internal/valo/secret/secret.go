// Package secret encrypts account passwords at rest with a machine-local
// key. The key file is created on first use next to the database; anyone who
// can read it can decrypt the passwords, which matches the original intent
// of tying secrets to the local machine account rather than a passphrase.
package secret

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
	"golang.org/x/crypto/chacha20poly1305"
)

// ErrNoSecret indicates a ciphertext that is empty or too short to contain
// a nonce.
var ErrNoSecret = errors.New("no secret stored")

// Box seals and opens passwords using XChaCha20-Poly1305 with a random
// nonce prepended to each ciphertext.
type Box struct {
	fs      afero.Fs
	keyPath string
}

// New creates a Box whose key lives at keyPath, generated on first use.
func New(fsys afero.Fs, keyPath string) *Box {
	return &Box{fs: fsys, keyPath: keyPath}
}

// Encrypt seals plain and returns nonce||ciphertext.
func (b *Box) Encrypt(plain string) ([]byte, error) {
	aead, err := b.aead()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return aead.Seal(nonce, nonce, []byte(plain), nil), nil
}

// Decrypt opens a ciphertext produced by Encrypt.
func (b *Box) Decrypt(sealed []byte) (string, error) {
	aead, err := b.aead()
	if err != nil {
		return "", err
	}

	if len(sealed) < aead.NonceSize() {
		return "", ErrNoSecret
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]

	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt password: %w", err)
	}
	return string(plain), nil
}

func (b *Box) aead() (cipher.AEAD, error) {
	key, err := b.key()
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("initialize cipher: %w", err)
	}
	return aead, nil
}

// key loads the machine-local key, generating it on first use.
func (b *Box) key() ([]byte, error) {
	key, err := afero.ReadFile(b.fs, b.keyPath)
	if err == nil {
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("key file %s is corrupt: %d bytes", b.keyPath, len(key))
		}
		return key, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	key = make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	if err := afero.WriteFile(b.fs, b.keyPath, key, 0o600); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}
	return key, nil
}
