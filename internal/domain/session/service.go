package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

const (
	accessTTL  = 15 * time.Minute
	refreshTTL = 30 * 24 * time.Hour
)

type Servicer interface {
	// Create выдает устройству пару токенов
	Create(ctx context.Context, userID int, deviceID string) (TokenPair, error)

	// Validate проверяет access-токен и возвращает userID
	Validate(ctx context.Context, token string) (int, error)

	// Refresh выдает новый access-токен по refresh-токену
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)

	// RevokeDevice отзывает сессию одного устройства
	RevokeDevice(ctx context.Context, userID int, deviceID string) error
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

func (s *Service) Create(ctx context.Context, userID int, deviceID string) (TokenPair, error) {
	if _, err := uuid.Parse(deviceID); err != nil {
		return TokenPair{}, fmt.Errorf("%w: %q", ErrInvalidDevice, deviceID)
	}

	access, err := generateToken()
	if err != nil {
		return TokenPair{}, fmt.Errorf("generate access token: %w", err)
	}
	refresh, err := generateToken()
	if err != nil {
		return TokenPair{}, fmt.Errorf("generate refresh token: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(accessTTL)
	err = s.repo.Create(ctx, userID, deviceID, hashToken(access), hashToken(refresh), expiresAt, now.Add(refreshTTL))
	if err != nil {
		return TokenPair{}, fmt.Errorf("save session: %w", err)
	}

	return TokenPair{
		Access:    access,
		Refresh:   refresh,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Service) Validate(ctx context.Context, token string) (int, error) {
	return s.repo.FindByAccess(ctx, hashToken(token))
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	sess, err := s.repo.FindByRefresh(ctx, hashToken(refreshToken))
	if err != nil {
		return TokenPair{}, ErrInvalidSession
	}
	if time.Now().After(sess.RefreshExpiresAt) {
		return TokenPair{}, ErrInvalidSession
	}

	access, err := generateToken()
	if err != nil {
		return TokenPair{}, fmt.Errorf("generate access token: %w", err)
	}

	expiresAt := time.Now().Add(accessTTL)
	if err := s.repo.RotateAccess(ctx, sess.ID, hashToken(access), expiresAt); err != nil {
		return TokenPair{}, fmt.Errorf("rotate access token: %w", err)
	}

	s.log.Debug("access-токен обновлен", "user_id", sess.UserID, "device_id", sess.DeviceID)

	return TokenPair{
		Access:    access,
		Refresh:   refreshToken,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Service) RevokeDevice(ctx context.Context, userID int, deviceID string) error {
	if _, err := uuid.Parse(deviceID); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDevice, deviceID)
	}
	return s.repo.DeleteByDevice(ctx, userID, deviceID)
}

func generateToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(tokenBytes), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
