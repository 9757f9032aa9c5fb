package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"golang.org/x/exp/slog"

	"timekeeper/internal/app/client/crypto"
	"timekeeper/internal/domain/sync"
	"timekeeper/internal/domain/task"
)

// SyncEvent - событие статуса синхронизации для слоя интерфейса
type SyncEvent string

const (
	EventSyncing        SyncEvent = "syncing"
	EventSyncSuccessful SyncEvent = "sync_successful"
	EventSyncFailed     SyncEvent = "sync_failed"
	EventReauthRequired SyncEvent = "reauthenticate_required"
)

// SyncResult - итог одного цикла синхронизации
type SyncResult struct {
	Pulled   int
	Applied  int
	Pushed   int
	Skipped  int
	Revision int64
}

const defaultBatchSize = 100

// SyncEngine гоняет циклы push/pull. Одновременно выполняется не больше
// одного цикла на аккаунт: повторный запрос во время работы цикла
// коалесцируется, а не ставится в очередь.
type SyncEngine struct {
	storage *SQLiteStorage
	tracker *Tracker
	session *Session
	log     *slog.Logger

	interval  time.Duration
	batchSize int

	trigger chan struct{}
	onEvent func(SyncEvent, *SyncResult)

	mu       gosync.Mutex
	inFlight bool
}

// NewSyncEngine создает новый движок синхронизации
func NewSyncEngine(storage *SQLiteStorage, tracker *Tracker, session *Session, interval time.Duration, log *slog.Logger) *SyncEngine {
	return &SyncEngine{
		storage:   storage,
		tracker:   tracker,
		session:   session,
		log:       log.With("component", "sync"),
		interval:  interval,
		batchSize: defaultBatchSize,
		trigger:   make(chan struct{}, 1),
	}
}

// OnEvent задает приёмник событий статуса синхронизации
func (e *SyncEngine) OnEvent(fn func(SyncEvent, *SyncResult)) {
	e.onEvent = fn
}

// Trigger запрашивает внеочередной цикл. Если цикл уже идёт или запрос
// уже стоит, новый просто схлопывается с ним.
func (e *SyncEngine) Trigger() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}

// Run крутит периодические циклы до отмены контекста
func (e *SyncEngine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.log.Info("синхронизация остановлена")
			return
		case <-ticker.C:
		case <-e.trigger:
		}

		if _, err := e.SyncOnce(ctx); err != nil && !errors.Is(err, ErrSyncInFlight) {
			e.log.Error("цикл синхронизации", "error", err)
		}
	}
}

// SyncOnce выполняет один цикл: забирает чужие изменения, разрешает
// конфликты, отправляет свои и двигает водяной знак. Ошибки сети не
// мешают локальной работе - цикл просто повторится.
func (e *SyncEngine) SyncOnce(ctx context.Context) (*SyncResult, error) {
	e.mu.Lock()
	if e.inFlight {
		e.mu.Unlock()
		return nil, ErrSyncInFlight
	}
	e.inFlight = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.inFlight = false
		e.mu.Unlock()
	}()

	result, err := e.cycle(ctx)
	if err != nil {
		switch {
		case errors.Is(err, ErrReauthRequired):
			e.emit(EventReauthRequired, nil)
		default:
			e.emit(EventSyncFailed, nil)
		}
		return nil, err
	}

	e.emit(EventSyncSuccessful, result)
	return result, nil
}

func (e *SyncEngine) cycle(ctx context.Context) (*SyncResult, error) {
	if state := e.session.State(); state != StateLoggedIn {
		if state == StateReauthRequired {
			return nil, ErrReauthRequired
		}
		return nil, ErrNoCredentials
	}

	accountKey, err := e.session.AccountKey()
	if err != nil {
		return nil, err
	}

	sealer, err := crypto.NewSealer(accountKey)
	if err != nil {
		return nil, err
	}

	api, err := e.session.apiClient()
	if err != nil {
		return nil, err
	}

	e.emit(EventSyncing, nil)

	cursor, err := e.storage.Cursor()
	if err != nil {
		return nil, err
	}

	since := cursor.LastRevision
	if cursor.NeedsFullSync {
		since = 0
	}

	result := &SyncResult{}

	// Pull: чужие изменения после водяного знака
	watermark := since
	for {
		var resp *sync.GetChangesResponse
		err := e.session.WithToken(ctx, func(token string) error {
			var reqErr error
			resp, reqErr = api.GetChanges(ctx, token, watermark, e.batchSize)
			return reqErr
		})
		if err != nil {
			return nil, fmt.Errorf("pull: %w", err)
		}

		for _, rec := range resp.Records {
			applied, err := e.applyRemote(sealer, rec)
			if err != nil {
				// Одна нечитаемая запись не должна останавливать
				// изменения с остальных устройств
				if errors.Is(err, crypto.ErrDecryptFailed) || errors.Is(err, task.ErrUnknownKind) {
					e.log.Warn("запись пропущена", "uid", rec.UID, "error", err)
					result.Skipped++
					continue
				}
				return nil, fmt.Errorf("применение %s: %w", rec.UID, err)
			}

			result.Pulled++
			if applied {
				result.Applied++
			}
		}

		// Пустая страница завершает pull, что бы ни говорил has_more:
		// двигаться дальше по ленте всё равно некуда
		if len(resp.Records) == 0 {
			break
		}
		watermark = resp.Records[len(resp.Records)-1].Revision

		if !resp.HasMore {
			break
		}
	}

	// Push: снимок грязных записей
	staged, err := e.tracker.StageForSync(sealer)
	if err != nil {
		return nil, err
	}

	pushHead := int64(0)
	for start := 0; start < len(staged); start += e.batchSize {
		end := start + e.batchSize
		if end > len(staged) {
			end = len(staged)
		}
		batch := staged[start:end]

		records := make([]sync.ChangeRecord, len(batch))
		for i, change := range batch {
			records[i] = change.Record
		}

		var resp *sync.PushChangesResponse
		err := e.session.WithToken(ctx, func(token string) error {
			var reqErr error
			resp, reqErr = api.PushChanges(ctx, token, records)
			return reqErr
		})
		if err != nil {
			return nil, fmt.Errorf("push: %w", err)
		}

		// Частичный приём: подтверждаем только то, что сервер принял
		if err := e.tracker.Acknowledge(resp.Accepted, batch); err != nil {
			return nil, err
		}
		result.Pushed += len(resp.Accepted)

		maxAccepted := int64(0)
		for _, ack := range resp.Accepted {
			if ack.Revision > maxAccepted {
				maxAccepted = ack.Revision
			}
		}

		// Если после наших записей на сервере ничего не появилось,
		// своё же эхо в следующем цикле можно не перечитывать
		if maxAccepted > 0 && maxAccepted == resp.HeadRevision {
			pushHead = maxAccepted
		} else {
			pushHead = 0
		}
	}

	if pushHead > watermark {
		watermark = pushHead
	}

	// Водяной знак двигается только после того, как pull применён
	// и push подтверждён
	if err := e.storage.AdvanceCursor(watermark); err != nil {
		return nil, err
	}
	result.Revision = watermark

	if purged, err := e.storage.PurgeTombstones(); err != nil {
		e.log.Warn("очистка надгробий", "error", err)
	} else if purged > 0 {
		e.log.Debug("надгробия очищены", "count", purged)
	}

	return result, nil
}

// applyRemote расшифровывает входящую запись и применяет её, если она
// выигрывает у локальной версии
func (e *SyncEngine) applyRemote(sealer *crypto.Sealer, rec sync.ChangeRecord) (bool, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(rec.Ciphertext)
	if err != nil {
		return false, fmt.Errorf("%w: плохой base64", crypto.ErrDecryptFailed)
	}
	nonce, err := base64.StdEncoding.DecodeString(rec.Nonce)
	if err != nil {
		return false, fmt.Errorf("%w: плохой base64", crypto.ErrDecryptFailed)
	}

	plaintext, err := sealer.Open(ciphertext, nonce)
	if err != nil {
		return false, err
	}

	remote := task.Candidate{
		UID:       rec.UID,
		UpdatedAt: rec.UpdatedAt,
		Deleted:   rec.Deleted,
		// Серверная копия выигрывает точную ничью: пустой отпечаток
		// локальной версии всегда меньше
		Fingerprint: crypto.Fingerprint(ciphertext),
	}

	switch task.Kind(rec.Kind) {
	case task.KindTask:
		var incoming task.Task
		if err := json.Unmarshal(plaintext, &incoming); err != nil {
			return false, fmt.Errorf("%w: %v", crypto.ErrDecryptFailed, err)
		}
		incoming.UID = rec.UID
		incoming.UpdatedAt = rec.UpdatedAt
		incoming.Deleted = rec.Deleted

		local, err := e.storage.GetTask(rec.UID)
		if err == nil {
			win := task.Resolve(task.Candidate{
				UID:       local.UID,
				UpdatedAt: local.UpdatedAt,
				Deleted:   local.Deleted,
			}, remote)
			if win == task.WinnerLocal {
				return false, nil
			}
		} else if !errors.Is(err, task.ErrNotFound) {
			return false, err
		}

		return true, e.storage.ApplyRemoteTask(incoming)

	case task.KindShortcut:
		var incoming task.Shortcut
		if err := json.Unmarshal(plaintext, &incoming); err != nil {
			return false, fmt.Errorf("%w: %v", crypto.ErrDecryptFailed, err)
		}
		incoming.UID = rec.UID
		incoming.UpdatedAt = rec.UpdatedAt
		incoming.Deleted = rec.Deleted

		local, err := e.storage.GetShortcut(rec.UID)
		if err == nil {
			win := task.Resolve(task.Candidate{
				UID:       local.UID,
				UpdatedAt: local.UpdatedAt,
				Deleted:   local.Deleted,
			}, remote)
			if win == task.WinnerLocal {
				return false, nil
			}
		} else if !errors.Is(err, task.ErrNotFound) {
			return false, err
		}

		return true, e.storage.ApplyRemoteShortcut(incoming)

	default:
		return false, task.ErrUnknownKind
	}
}

func (e *SyncEngine) emit(event SyncEvent, result *SyncResult) {
	if e.onEvent != nil {
		e.onEvent(event, result)
	}
}
