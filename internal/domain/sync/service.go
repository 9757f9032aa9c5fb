package sync

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"timekeeper/internal/app/server/api/http/middleware/auth"
	"timekeeper/internal/domain/task"

	"golang.org/x/exp/slog"
)

// Servicer интерфейс сервиса синхронизации
type Servicer interface {
	// GetChanges возвращает изменения аккаунта после указанной ревизии
	GetChanges(ctx context.Context, req GetChangesRequest) (*GetChangesResponse, error)

	// PushChanges принимает пакет изменений от устройства
	PushChanges(ctx context.Context, req PushChangesRequest) (*PushChangesResponse, error)
}

// Service реализация сервиса синхронизации
type Service struct {
	repo   Repository
	log    *slog.Logger
	config *ServiceConfig
}

// NewService создает новый сервис синхронизации
func NewService(repo Repository, log *slog.Logger, config *ServiceConfig) *Service {
	if config == nil {
		config = &ServiceConfig{
			BatchSize:    100,
			MaxBatchSize: 1000,
		}
	}

	return &Service{
		repo:   repo,
		log:    log,
		config: config,
	}
}

// GetChanges возвращает изменения аккаунта после указанной ревизии
func (s *Service) GetChanges(ctx context.Context, req GetChangesRequest) (*GetChangesResponse, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	if req.Since < 0 {
		return nil, fmt.Errorf("%w: отрицательная ревизия %d", ErrInvalidRecord, req.Since)
	}
	if req.Limit <= 0 {
		req.Limit = s.config.BatchSize
	}
	if req.Limit > s.config.MaxBatchSize {
		req.Limit = s.config.MaxBatchSize
	}

	records, err := s.repo.ListChangesSince(ctx, userID, req.Since, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list changes: %w", err)
	}

	head, err := s.repo.HeadRevision(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get head revision: %w", err)
	}

	recordsSlice := make([]ChangeRecord, len(records))
	hasMore := false
	for i, r := range records {
		recordsSlice[i] = *r
	}
	if len(records) > 0 {
		hasMore = records[len(records)-1].Revision < head
	}

	return &GetChangesResponse{
		Status:       "Ok",
		Records:      recordsSlice,
		HasMore:      hasMore,
		HeadRevision: head,
	}, nil
}

// PushChanges принимает пакет изменений от устройства. Приём идемпотентен:
// повторная отправка той же версии записи возвращает уже присвоенную
// ревизию. Конфликт версий разрешает хранилище под блокировкой строки,
// проигравшая версия подтверждается выжившей серверной копией.
func (s *Service) PushChanges(ctx context.Context, req PushChangesRequest) (*PushChangesResponse, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	if len(req.Records) > s.config.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d записей при лимите %d", ErrBatchTooLarge, len(req.Records), s.config.MaxBatchSize)
	}
	for i := range req.Records {
		if err := validateChange(&req.Records[i]); err != nil {
			return nil, err
		}
	}

	accepted := make([]AcceptedRecord, 0, len(req.Records))
	for i := range req.Records {
		rec := req.Records[i]

		surviving, err := s.repo.ApplyChange(ctx, userID, &rec, incomingWins)
		if err != nil {
			return nil, fmt.Errorf("failed to apply change %s: %w", rec.UID, err)
		}

		accepted = append(accepted, AcceptedRecord{
			UID:       surviving.UID,
			UpdatedAt: surviving.UpdatedAt,
			Revision:  surviving.Revision,
		})
	}

	head, err := s.repo.HeadRevision(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get head revision: %w", err)
	}

	s.log.Debug("Принят пакет изменений", "user_id", userID, "records", len(req.Records))

	return &PushChangesResponse{
		Status:       "Ok",
		Accepted:     accepted,
		HeadRevision: head,
	}, nil
}

// incomingWins решает, заменяет ли входящая версия серверную, тем же
// правилом, каким клиенты разрешают конфликты между собой
func incomingWins(existing, incoming *ChangeRecord) bool {
	if existing.UpdatedAt == incoming.UpdatedAt && existing.Ciphertext == incoming.Ciphertext {
		return false
	}

	winner := task.Resolve(
		task.Candidate{UID: existing.UID, UpdatedAt: existing.UpdatedAt, Deleted: existing.Deleted, Fingerprint: fingerprint(existing.Ciphertext)},
		task.Candidate{UID: incoming.UID, UpdatedAt: incoming.UpdatedAt, Deleted: incoming.Deleted, Fingerprint: fingerprint(incoming.Ciphertext)},
	)
	return winner == task.WinnerRemote
}

func validateChange(rec *ChangeRecord) error {
	if rec.UID == "" {
		return fmt.Errorf("%w: пустой uid", ErrInvalidRecord)
	}
	if rec.Kind != string(task.KindTask) && rec.Kind != string(task.KindShortcut) {
		return fmt.Errorf("%w: неизвестный kind %q", ErrInvalidRecord, rec.Kind)
	}
	if rec.UpdatedAt <= 0 {
		return fmt.Errorf("%w: некорректный updated_at записи %s", ErrInvalidRecord, rec.UID)
	}
	if _, err := base64.StdEncoding.DecodeString(rec.Ciphertext); err != nil {
		return fmt.Errorf("%w: ciphertext записи %s не base64", ErrInvalidRecord, rec.UID)
	}
	if _, err := base64.StdEncoding.DecodeString(rec.Nonce); err != nil {
		return fmt.Errorf("%w: nonce записи %s не base64", ErrInvalidRecord, rec.UID)
	}
	return nil
}

func fingerprint(ciphertext string) string {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		raw = []byte(ciphertext)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
