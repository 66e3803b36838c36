package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
	"strconv"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	keySize   = chacha20poly1305.KeySize
	nonceSize = chacha20poly1305.NonceSize
	tagSize   = 16

	keyInfoPrefix = "room-message-key:"
)

// ErrCipher covers every decrypt failure: short blob, wrong key, tampered
// ciphertext. Callers never get partial plaintext.
var ErrCipher = errors.New("message decrypt failed")

// Cipher derives a per-room symmetric key from a process-wide master key
// and seals/opens message payloads with ChaCha20-Poly1305. Keys are
// deterministic per room, so no per-room key storage is needed and every
// replica holding the master key derives the same key. No key rotation in
// v1.
type Cipher struct {
	master []byte
}

func NewCipher(masterKey []byte) (*Cipher, error) {
	if len(masterKey) != keySize {
		return nil, errors.New("master key must be 32 bytes")
	}
	return &Cipher{master: masterKey}, nil
}

// DeriveKey returns the 256-bit room key via HKDF-SHA256.
func (c *Cipher) DeriveKey(roomID uint) []byte {
	info := keyInfoPrefix + strconv.FormatUint(uint64(roomID), 10)
	r := hkdf.New(sha256.New, c.master, nil, []byte(info))
	key := make([]byte, keySize)
	if _, err := io.ReadFull(r, key); err != nil {
		// HKDF-SHA256 can emit far more than 32 bytes, this cannot fail.
		panic(err)
	}
	return key
}

// Encrypt seals plaintext with a fresh random nonce. The returned blob is
// nonce||ciphertext and is what gets persisted.
func (c *Cipher) Encrypt(roomID uint, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(c.DeriveKey(roomID))
	if err != nil {
		return nil, err
	}
	blob := make([]byte, nonceSize, nonceSize+len(plaintext)+tagSize)
	if _, err := rand.Read(blob); err != nil {
		return nil, err
	}
	return aead.Seal(blob, blob[:nonceSize], plaintext, nil), nil
}

// Decrypt opens a nonce||ciphertext blob and fails closed on any mismatch.
func (c *Cipher) Decrypt(roomID uint, blob []byte) ([]byte, error) {
	if len(blob) < nonceSize+tagSize {
		return nil, ErrCipher
	}
	aead, err := chacha20poly1305.New(c.DeriveKey(roomID))
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, blob[:nonceSize], blob[nonceSize:], nil)
	if err != nil {
		return nil, ErrCipher
	}
	return plaintext, nil
}
