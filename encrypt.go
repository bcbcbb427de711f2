package refine

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// Encryption errors.
var (
	ErrInvalidKeySize  = errors.New("invalid key size")
	ErrCiphertextShort = errors.New("ciphertext too short")
)

// Encryptor handles encryption/decryption operations.
type Encryptor interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

type aesEncryptor struct {
	gcm cipher.AEAD
}

// AES returns an AES-GCM encryptor.
// Key must be 16, 24, or 32 bytes for AES-128, AES-192, or AES-256.
func AES(key []byte) (Encryptor, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: must be 16, 24, or 32 bytes, got %d", ErrInvalidKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &aesEncryptor{gcm: gcm}, nil
}

// Encrypt prefixes the random nonce to the sealed output.
func (e *aesEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return e.gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (e *aesEncryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	n := e.gcm.NonceSize()
	if len(ciphertext) < n {
		return nil, ErrCiphertextShort
	}
	return e.gcm.Open(nil, ciphertext[:n], ciphertext[n:], nil)
}

// Encrypting returns a transformer that encrypts values with enc and encodes
// the ciphertext as standard base64.
func Encrypting(enc Encryptor) Processor {
	return Transformer(func(value string, _ TagDescriptor) (string, error) {
		ct, err := enc.Encrypt([]byte(value))
		if err != nil {
			return "", err
		}
		return base64.StdEncoding.EncodeToString(ct), nil
	})
}

// Decrypting returns the inverse transformer of Encrypting.
func Decrypting(enc Encryptor) Processor {
	return Transformer(func(value string, _ TagDescriptor) (string, error) {
		ct, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return "", fmt.Errorf("base64 decode: %w", err)
		}
		pt, err := enc.Decrypt(ct)
		if err != nil {
			return "", err
		}
		return string(pt), nil
	})
}
