package session

import "time"

// Session - сессия одного устройства. Токены хранятся только в виде
// sha256-хэшей.
type Session struct {
	ID               int
	UserID           int
	DeviceID         string
	RefreshExpiresAt time.Time
}

// TokenPair - пара токенов, выдаваемая устройству при входе
type TokenPair struct {
	Access    string
	Refresh   string
	ExpiresAt time.Time
}
