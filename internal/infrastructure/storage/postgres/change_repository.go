package postgres

import (
	"context"
	"errors"
	"fmt"

	"timekeeper/internal/domain/sync"

	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"
)

// ChangeRepository хранит поток изменений аккаунтов. Ревизии выдаются из
// счетчика в sync_heads, поэтому они монотонны в рамках аккаунта даже при
// конкурентных push'ах с разных устройств.
type ChangeRepository struct {
	db  *Storage
	log *slog.Logger
}

// NewChangeRepository создает новый репозиторий потока изменений
func NewChangeRepository(db *Storage, log *slog.Logger) *ChangeRepository {
	return &ChangeRepository{
		db:  db,
		log: log,
	}
}

func (r *ChangeRepository) ListChangesSince(ctx context.Context, userID int, since int64, limit int) ([]*sync.ChangeRecord, error) {
	rows, err := r.db.Pool().Query(ctx,
		`SELECT uid, kind, ciphertext, nonce, updated_at, deleted, revision
         FROM changes
         WHERE user_id = $1 AND revision > $2
         ORDER BY revision ASC
         LIMIT $3`,
		userID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("list changes: %w", err)
	}
	defer rows.Close()

	var records []*sync.ChangeRecord
	for rows.Next() {
		var rec sync.ChangeRecord
		err := rows.Scan(&rec.UID, &rec.Kind, &rec.Ciphertext, &rec.Nonce, &rec.UpdatedAt, &rec.Deleted, &rec.Revision)
		if err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list changes: %w", err)
	}

	return records, nil
}

// ApplyChange применяет версию записи атомарно: строка берётся под
// блокировку, правило wins вычисляется внутри той же транзакции. Два
// устройства, одновременно толкающие один uid, сериализуются на
// блокировке, и устаревшая версия не может затереть более новую.
func (r *ChangeRepository) ApplyChange(ctx context.Context, userID int, record *sync.ChangeRecord, wins func(existing, incoming *sync.ChangeRecord) bool) (*sync.ChangeRecord, error) {
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var existing sync.ChangeRecord
	err = tx.QueryRow(ctx,
		`SELECT uid, kind, ciphertext, nonce, updated_at, deleted, revision
         FROM changes
         WHERE user_id = $1 AND uid = $2
         FOR UPDATE`,
		userID, record.UID).Scan(&existing.UID, &existing.Kind, &existing.Ciphertext,
		&existing.Nonce, &existing.UpdatedAt, &existing.Deleted, &existing.Revision)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// первая версия записи
	case err != nil:
		return nil, fmt.Errorf("lock change: %w", err)
	default:
		if !wins(&existing, record) {
			// Дубликат или проигравшая версия: выживает серверная копия
			if err := tx.Commit(ctx); err != nil {
				return nil, fmt.Errorf("commit tx: %w", err)
			}
			return &existing, nil
		}
	}

	var revision int64
	err = tx.QueryRow(ctx,
		`INSERT INTO sync_heads (user_id, head) VALUES ($1, 1)
         ON CONFLICT (user_id) DO UPDATE SET head = sync_heads.head + 1
         RETURNING head`,
		userID).Scan(&revision)
	if err != nil {
		return nil, fmt.Errorf("advance head: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO changes (user_id, uid, kind, ciphertext, nonce, updated_at, deleted, revision)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
         ON CONFLICT (user_id, uid) DO UPDATE SET
             kind = EXCLUDED.kind,
             ciphertext = EXCLUDED.ciphertext,
             nonce = EXCLUDED.nonce,
             updated_at = EXCLUDED.updated_at,
             deleted = EXCLUDED.deleted,
             revision = EXCLUDED.revision`,
		userID, record.UID, record.Kind, record.Ciphertext, record.Nonce, record.UpdatedAt, record.Deleted, revision)
	if err != nil {
		return nil, fmt.Errorf("upsert change: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	applied := *record
	applied.Revision = revision
	return &applied, nil
}

func (r *ChangeRepository) HeadRevision(ctx context.Context, userID int) (int64, error) {
	var head int64
	err := r.db.Pool().QueryRow(ctx,
		`SELECT COALESCE(MAX(head), 0) FROM sync_heads WHERE user_id = $1`,
		userID).Scan(&head)
	if err != nil {
		return 0, fmt.Errorf("head revision: %w", err)
	}
	return head, nil
}
