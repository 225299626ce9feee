package custody

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// hkdfInfo domain-separates the custody encryption key from any other
// use of the master secret.
const hkdfInfo = "internlog/custody/private-key/v1"

// keyBox encrypts and decrypts custodial private-key material with
// AES-256-GCM under a key derived from the process-wide master secret.
type keyBox struct {
	aead cipher.AEAD
}

// newKeyBox derives the AES-256 key from the master secret via
// HKDF-SHA256 and prepares the AEAD. The master secret is injected
// configuration, never ambient state.
func newKeyBox(masterKey []byte) (*keyBox, error) {
	derived := make([]byte, 32)
	kdf := hkdf.New(sha256.New, masterKey, nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, derived); err != nil {
		return nil, fmt.Errorf("custody: derive key: %w", err)
	}

	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, fmt.Errorf("custody: init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("custody: init gcm: %w", err)
	}

	return &keyBox{aead: aead}, nil
}

// seal encrypts plaintext and returns nonce||ciphertext.
func (b *keyBox) seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("custody: nonce: %w", err)
	}
	return b.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// open decrypts nonce||ciphertext produced by seal.
func (b *keyBox) open(sealed []byte) ([]byte, error) {
	if len(sealed) <= b.aead.NonceSize() {
		return nil, fmt.Errorf("custody: ciphertext too short")
	}
	nonce, ciphertext := sealed[:b.aead.NonceSize()], sealed[b.aead.NonceSize():]
	plaintext, err := b.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("custody: open: %w", err)
	}
	return plaintext, nil
}
