package crypto

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	keyCacheTimeout     = 24 * time.Hour
	keyCachePermissions = 0600
)

// KeyCache хранит развёрнутый ключ аккаунта между запусками CLI, чтобы
// не спрашивать парольную фразу на каждую команду. Файл живет рядом с
// базой, доступен только владельцу и удаляется при выходе из аккаунта.
type KeyCache struct {
	path string
}

type cachedKey struct {
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewKeyCache создает кэш ключа по указанному пути
func NewKeyCache(path string) *KeyCache {
	return &KeyCache{path: path}
}

// Save сохраняет ключ аккаунта в кэш
func (c *KeyCache) Save(accountKey []byte) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("каталог кэша ключа: %w", err)
	}

	data, err := json.Marshal(cachedKey{
		Key:       hex.EncodeToString(accountKey),
		ExpiresAt: time.Now().Add(keyCacheTimeout),
	})
	if err != nil {
		return fmt.Errorf("сериализация кэша ключа: %w", err)
	}

	if err := os.WriteFile(c.path, data, keyCachePermissions); err != nil {
		return fmt.Errorf("запись кэша ключа: %w", err)
	}

	return nil
}

// Load возвращает ключ аккаунта из кэша. Истёкший или повреждённый кэш
// удаляется и даёт ErrKeyNotLoaded.
func (c *KeyCache) Load() ([]byte, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, ErrKeyNotLoaded
	}

	var cached cachedKey
	if err := json.Unmarshal(data, &cached); err != nil {
		_ = os.Remove(c.path)
		return nil, ErrKeyNotLoaded
	}

	if time.Now().After(cached.ExpiresAt) {
		_ = os.Remove(c.path)
		return nil, ErrKeyNotLoaded
	}

	key, err := hex.DecodeString(cached.Key)
	if err != nil || len(key) != keyLength {
		_ = os.Remove(c.path)
		return nil, ErrKeyNotLoaded
	}

	return key, nil
}

// Clear удаляет кэш ключа
func (c *KeyCache) Clear() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("удаление кэша ключа: %w", err)
	}
	return nil
}
