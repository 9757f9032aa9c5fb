package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// Sealer шифрует записи ключом аккаунта: AES-256-GCM, свежий nonce на
// каждую операцию. Nonce передается отдельно от шифротекста, как того
// требует протокол синхронизации.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer создает новый шифровальщик записей
func NewSealer(accountKey []byte) (*Sealer, error) {
	if len(accountKey) != keyLength {
		return nil, fmt.Errorf("%w: длина ключа %d", ErrKeyNotLoaded, len(accountKey))
	}

	block, err := aes.NewCipher(accountKey)
	if err != nil {
		return nil, fmt.Errorf("создание cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("создание GCM: %w", err)
	}

	return &Sealer{aead: aead}, nil
}

// Seal шифрует запись и возвращает шифротекст и nonce
func (s *Sealer) Seal(plaintext []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, fmt.Errorf("генерация nonce: %w", err)
	}

	return s.aead.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// Open расшифровывает запись. Подделанный или повреждённый шифротекст
// даёт ErrDecryptFailed.
func (s *Sealer) Open(ciphertext, nonce []byte) ([]byte, error) {
	if len(nonce) != s.aead.NonceSize() {
		return nil, ErrDecryptFailed
	}

	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}

	return plaintext, nil
}

// Fingerprint возвращает hex-хэш шифротекста. Используется для
// подтверждения, что отправленная версия записи не изменилась между
// снимком и подтверждением сервера.
func Fingerprint(ciphertext []byte) string {
	sum := sha256.Sum256(ciphertext)
	return hex.EncodeToString(sum[:])
}

func sealWithKey(key, plaintext []byte) (ciphertext, nonce []byte, err error) {
	s, err := NewSealer(key)
	if err != nil {
		return nil, nil, err
	}
	return s.Seal(plaintext)
}

func openWithKey(key, ciphertext, nonce []byte) ([]byte, error) {
	s, err := NewSealer(key)
	if err != nil {
		return nil, err
	}
	return s.Open(ciphertext, nonce)
}
