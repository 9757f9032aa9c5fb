package session

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, userID int, deviceID, accessHash, refreshHash string, accessExpires, refreshExpires time.Time) error

	// FindByAccess возвращает userID сессии с не истёкшим access-токеном
	FindByAccess(ctx context.Context, accessHash string) (int, error)

	// FindByRefresh возвращает сессию по хэшу refresh-токена
	FindByRefresh(ctx context.Context, refreshHash string) (*Session, error)

	// RotateAccess заменяет access-токен сессии
	RotateAccess(ctx context.Context, sessionID int, accessHash string, accessExpires time.Time) error

	// DeleteByDevice удаляет сессии устройства; сессии других устройств
	// аккаунта не затрагиваются
	DeleteByDevice(ctx context.Context, userID int, deviceID string) error
}
