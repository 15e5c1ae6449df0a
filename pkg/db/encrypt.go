package db

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5" //nolint: gosec //MD5 is only used as fingerprint of the key
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

//Encryptor seals credential references and config blobs before they are persisted.
//Cipher texts are prefixed with the fingerprint of the key which produced them.
type Encryptor struct {
	keyID [16]byte
	aead  cipher.AEAD
}

func NewEncryptor(key string) (*Encryptor, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	return &Encryptor{
		aead:  aead,
		keyID: md5.Sum([]byte(key)), //nolint: gosec
	}, nil
}

//NewKey generates a random HEX encoded AES-256 key
func NewKey() (string, error) {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	return hex.EncodeToString(bytes), err
}

func newAEAD(key string) (cipher.AEAD, error) {
	keyBytes, err := hex.DecodeString(key)
	if err != nil {
		return nil, errors.Wrap(err, "encryption key is not a HEX string")
	}
	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, errors.Wrap(err, "invalid encryption key")
	}
	return cipher.NewGCM(block)
}

func (e *Encryptor) KeyID() string {
	return fmt.Sprintf("%x", e.keyID)
}

//Encrypt returns an empty string for empty input
func (e *Encryptor) Encrypt(data string) (string, error) {
	if data == "" {
		return "", nil
	}
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	enc := e.aead.Seal(nonce, nonce, []byte(data), nil)
	return fmt.Sprintf("%s%x", e.KeyID(), enc), nil
}

func (e *Encryptor) Decrypt(encData string) (string, error) {
	if encData == "" {
		return "", nil
	}
	if !e.Decryptable(encData) {
		return "", fmt.Errorf("data cannot be decrypted because encryption key does not match")
	}

	enc, err := hex.DecodeString(strings.TrimPrefix(encData, e.KeyID()))
	if err != nil {
		return "", fmt.Errorf("failed to decode HEX string to bytes")
	}

	nonceSize := e.aead.NonceSize()
	if len(enc) < nonceSize {
		return "", fmt.Errorf("encrypted data is truncated")
	}
	data, err := e.aead.Open(nil, enc[:nonceSize], enc[nonceSize:], nil)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (e *Encryptor) Decryptable(encData string) bool {
	return strings.HasPrefix(encData, e.KeyID())
}
