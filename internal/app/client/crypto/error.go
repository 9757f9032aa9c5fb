package crypto

import "errors"

var (
	// ErrWrongPassphrase - парольная фраза не подходит к обёрнутому ключу
	ErrWrongPassphrase = errors.New("неверная парольная фраза")
	// ErrDecryptFailed - шифротекст не прошел проверку подлинности
	ErrDecryptFailed = errors.New("не удалось расшифровать данные")
	// ErrKeyNotLoaded - ключ аккаунта отсутствует в памяти
	ErrKeyNotLoaded = errors.New("ключ аккаунта не загружен")
)
