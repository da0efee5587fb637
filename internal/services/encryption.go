package services

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

const (
	encryptionKeyLength = 32
	ivLength            = 16
)

var (
	ErrInvalidIVLength   = errors.New("invalid iv length")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

// EncryptionService is the AES-256-CBC envelope protecting secrets at rest.
// The key is injected at construction from external configuration and is
// never stored alongside the data it protects.
type EncryptionService struct {
	key []byte
}

// NewEncryptionService decodes a base64 key and truncates it to exactly
// 32 bytes. A key shorter than that is a configuration error.
func NewEncryptionService(keyBase64 string) (*EncryptionService, error) {
	if keyBase64 == "" {
		return nil, errors.New("encryption key is not set")
	}

	key, err := base64.StdEncoding.DecodeString(keyBase64)
	if err != nil {
		return nil, fmt.Errorf("encryption key is not valid base64: %w", err)
	}
	if len(key) < encryptionKeyLength {
		return nil, fmt.Errorf("encryption key must decode to at least %d bytes (got %d)", encryptionKeyLength, len(key))
	}

	return &EncryptionService{key: key[:encryptionKeyLength]}, nil
}

// Encrypt encrypts a plaintext string and returns base64-encoded ciphertext
// plus the base64-encoded IV used. A fresh random IV is drawn on every call;
// reusing an IV under the same key would leak plaintext structure.
func (s *EncryptionService) Encrypt(plaintext string) (ciphertext, iv string, err error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", "", err
	}

	ivBytes := make([]byte, ivLength)
	if _, err := io.ReadFull(rand.Reader, ivBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate iv: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	encrypted := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, ivBytes).CryptBlocks(encrypted, padded)

	return base64.StdEncoding.EncodeToString(encrypted),
		base64.StdEncoding.EncodeToString(ivBytes),
		nil
}

// Decrypt is the inverse transform. The IV must be exactly 16 bytes and the
// ciphertext a whole number of blocks with valid padding.
func (s *EncryptionService) Decrypt(ciphertext, iv string) (string, error) {
	encrypted, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	ivBytes, err := base64.StdEncoding.DecodeString(iv)
	if err != nil {
		return "", ErrInvalidIVLength
	}
	if len(ivBytes) != ivLength {
		return "", ErrInvalidIVLength
	}

	if len(encrypted) == 0 || len(encrypted)%aes.BlockSize != 0 {
		return "", ErrInvalidCiphertext
	}

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", err
	}

	decrypted := make([]byte, len(encrypted))
	cipher.NewCBCDecrypter(block, ivBytes).CryptBlocks(decrypted, encrypted)

	unpadded, err := pkcs7Unpad(decrypted, aes.BlockSize)
	if err != nil {
		return "", err
	}

	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrInvalidCiphertext
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize {
		return nil, ErrInvalidCiphertext
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, ErrInvalidCiphertext
		}
	}
	return data[:len(data)-padding], nil
}
