package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	// Параметры Argon2id для вывода ключа-обёртки из парольной фразы
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4

	saltLength = 16
	keyLength  = 32 // 256 бит для AES-256

	// Контекст для login proof, чтобы дайджест для сервера никогда не
	// совпадал с ключевым материалом
	proofContext = "timekeeper-auth"
)

// KDFParams - параметры вывода ключа-обёртки. Хранятся рядом с обёрнутым
// ключом, чтобы любая копия могла быть развёрнута той же фразой.
type KDFParams struct {
	Salt    []byte `json:"salt"`
	Time    uint32 `json:"time"`
	Memory  uint32 `json:"memory"`
	Threads uint8  `json:"threads"`
}

// NewKDFParams создает параметры KDF со свежей солью
func NewKDFParams() (KDFParams, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return KDFParams{}, fmt.Errorf("генерация соли: %w", err)
	}

	return KDFParams{
		Salt:    salt,
		Time:    argon2Time,
		Memory:  argon2Memory,
		Threads: argon2Threads,
	}, nil
}

// DeriveKEK выводит ключ-обёртку из парольной фразы
func DeriveKEK(passphrase []byte, p KDFParams) []byte {
	return argon2.IDKey(passphrase, p.Salt, p.Time, p.Memory, p.Threads, keyLength)
}

// GenerateAccountKey генерирует случайный ключ аккаунта. Ключ создается
// один раз при регистрации и никогда не выводится из парольной фразы,
// поэтому смена фразы требует только переобёртки.
func GenerateAccountKey() ([]byte, error) {
	key := make([]byte, keyLength)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("генерация ключа аккаунта: %w", err)
	}
	return key, nil
}

// WrappedKey - ключ аккаунта, зашифрованный ключом-обёрткой
type WrappedKey struct {
	Ciphertext []byte    `json:"ciphertext"`
	Nonce      []byte    `json:"nonce"`
	Params     KDFParams `json:"params"`
}

// WrapKey оборачивает ключ аккаунта парольной фразой
func WrapKey(accountKey, passphrase []byte) (*WrappedKey, error) {
	params, err := NewKDFParams()
	if err != nil {
		return nil, err
	}

	kek := DeriveKEK(passphrase, params)
	defer ClearMemory(kek)

	ciphertext, nonce, err := sealWithKey(kek, accountKey)
	if err != nil {
		return nil, fmt.Errorf("обёртка ключа: %w", err)
	}

	return &WrappedKey{
		Ciphertext: ciphertext,
		Nonce:      nonce,
		Params:     params,
	}, nil
}

// UnwrapKey разворачивает ключ аккаунта. Неверная фраза даёт
// ErrWrongPassphrase: AEAD не пройдет проверку подлинности.
func UnwrapKey(w *WrappedKey, passphrase []byte) ([]byte, error) {
	kek := DeriveKEK(passphrase, w.Params)
	defer ClearMemory(kek)

	accountKey, err := openWithKey(kek, w.Ciphertext, w.Nonce)
	if err != nil {
		return nil, ErrWrongPassphrase
	}

	return accountKey, nil
}

// LoginProof выводит детерминированный дайджест для аутентификации на
// сервере. Дайджест не пригоден для расшифровки данных: сервер видит
// только его.
func LoginProof(email string, passphrase []byte) string {
	h := sha256.New()
	h.Write([]byte(proofContext))
	h.Write([]byte(strings.ToLower(strings.TrimSpace(email))))
	h.Write(passphrase)
	return hex.EncodeToString(h.Sum(nil))
}

// ClearMemory затирает чувствительные данные
func ClearMemory(data []byte) {
	for i := range data {
		data[i] = 0
	}
}
