package client

import "errors"

var (
	// ErrNoCredentials - на устройстве нет сохранённого аккаунта
	ErrNoCredentials = errors.New("аккаунт не настроен, выполните вход")
	// ErrUnauthorized - сервер отклонил токен доступа
	ErrUnauthorized = errors.New("сервер отклонил токен")
	// ErrReauthRequired - сессия недействительна, нужен повторный вход
	ErrReauthRequired = errors.New("требуется повторный вход")
	// ErrSyncInFlight - цикл синхронизации уже выполняется
	ErrSyncInFlight = errors.New("синхронизация уже выполняется")
	// ErrTimerNotRunning - нет идущего таймера
	ErrTimerNotRunning = errors.New("таймер не запущен")
	// ErrInvalidTransition - переход не разрешён из текущего состояния таймера
	ErrInvalidTransition = errors.New("недопустимый переход таймера")
)
