package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timekeeper/internal/domain/session"

	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"
)

type SessionRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewSessionRepository(db *Storage, log *slog.Logger) *SessionRepository {
	return &SessionRepository{
		db:  db,
		log: log,
	}
}

func (r *SessionRepository) Create(ctx context.Context, userID int, deviceID, accessHash, refreshHash string, accessExpires, refreshExpires time.Time) error {
	_, err := r.db.Pool().Exec(ctx,
		`INSERT INTO sessions (user_id, device_id, access_hash, refresh_hash, access_expires_at, refresh_expires_at)
         VALUES ($1, $2, decode($3, 'hex'), decode($4, 'hex'), $5, $6)`,
		userID, deviceID, accessHash, refreshHash, accessExpires, refreshExpires)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) FindByAccess(ctx context.Context, accessHash string) (int, error) {
	var userID int
	err := r.db.Pool().QueryRow(ctx,
		`SELECT user_id FROM sessions
         WHERE access_hash = decode($1, 'hex') AND access_expires_at > NOW()`,
		accessHash).Scan(&userID)
	if err != nil {
		return 0, session.ErrInvalidSession
	}
	return userID, nil
}

func (r *SessionRepository) FindByRefresh(ctx context.Context, refreshHash string) (*session.Session, error) {
	var s session.Session
	err := r.db.Pool().QueryRow(ctx,
		`SELECT id, user_id, device_id, refresh_expires_at FROM sessions
         WHERE refresh_hash = decode($1, 'hex')`,
		refreshHash).Scan(&s.ID, &s.UserID, &s.DeviceID, &s.RefreshExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, session.ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &s, nil
}

func (r *SessionRepository) RotateAccess(ctx context.Context, sessionID int, accessHash string, accessExpires time.Time) error {
	tag, err := r.db.Pool().Exec(ctx,
		`UPDATE sessions SET access_hash = decode($1, 'hex'), access_expires_at = $2 WHERE id = $3`,
		accessHash, accessExpires, sessionID)
	if err != nil {
		return fmt.Errorf("rotate access: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrInvalidSession
	}
	return nil
}

func (r *SessionRepository) DeleteByDevice(ctx context.Context, userID int, deviceID string) error {
	_, err := r.db.Pool().Exec(ctx,
		`DELETE FROM sessions WHERE user_id = $1 AND device_id = $2`,
		userID, deviceID)
	if err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}
