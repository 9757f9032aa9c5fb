package client

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"golang.org/x/exp/slog"

	"timekeeper/internal/app/client/crypto"
	"timekeeper/internal/domain/sync"
	"timekeeper/internal/domain/task"
)

// StagedChange - запись, снятая снимком для отправки. UpdatedAt снимка
// служит охранным условием при подтверждении: если запись изменилась
// после снимка, она остаётся грязной и уедет в следующем цикле.
type StagedChange struct {
	Record      sync.ChangeRecord
	Kind        task.Kind
	UpdatedAt   int64
	Fingerprint string
}

// Tracker следит за грязными записями: снимает их снимком для отправки
// и подтверждает принятые сервером
type Tracker struct {
	storage *SQLiteStorage
	log     *slog.Logger
}

// NewTracker создает новый трекер изменений
func NewTracker(storage *SQLiteStorage, log *slog.Logger) *Tracker {
	return &Tracker{
		storage: storage,
		log:     log.With("component", "tracker"),
	}
}

// StageForSync снимает снимок всех грязных записей и запечатывает их
// ключом аккаунта. Локальные записи, появившиеся после снимка, заберёт
// следующий цикл.
func (t *Tracker) StageForSync(sealer *crypto.Sealer) ([]StagedChange, error) {
	tasks, err := t.storage.DirtyTasks()
	if err != nil {
		return nil, err
	}

	shortcuts, err := t.storage.DirtyShortcuts()
	if err != nil {
		return nil, err
	}

	staged := make([]StagedChange, 0, len(tasks)+len(shortcuts))

	for _, item := range tasks {
		change, err := sealChange(sealer, item.UID, task.KindTask, item.UpdatedAt, item.Deleted, item)
		if err != nil {
			return nil, fmt.Errorf("задача %s: %w", item.UID, err)
		}
		staged = append(staged, change)
	}

	for _, item := range shortcuts {
		change, err := sealChange(sealer, item.UID, task.KindShortcut, item.UpdatedAt, item.Deleted, item)
		if err != nil {
			return nil, fmt.Errorf("шаблон %s: %w", item.UID, err)
		}
		staged = append(staged, change)
	}

	return staged, nil
}

func sealChange(sealer *crypto.Sealer, uid string, kind task.Kind, updatedAt int64, deleted bool, payload any) (StagedChange, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return StagedChange{}, fmt.Errorf("ошибка сериализации записи: %w", err)
	}

	ciphertext, nonce, err := sealer.Seal(plaintext)
	if err != nil {
		return StagedChange{}, fmt.Errorf("ошибка шифрования записи: %w", err)
	}

	return StagedChange{
		Record: sync.ChangeRecord{
			UID:        uid,
			Kind:       string(kind),
			Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
			Nonce:      base64.StdEncoding.EncodeToString(nonce),
			UpdatedAt:  updatedAt,
			Deleted:    deleted,
		},
		Kind:        kind,
		UpdatedAt:   updatedAt,
		Fingerprint: crypto.Fingerprint(ciphertext),
	}, nil
}

// Acknowledge снимает грязный бит с записей, принятых сервером.
// Частичный приём безопасен: неподтверждённые записи остаются грязными.
func (t *Tracker) Acknowledge(accepted []sync.AcceptedRecord, staged []StagedChange) error {
	byUID := make(map[string]StagedChange, len(staged))
	for _, change := range staged {
		byUID[change.Record.UID] = change
	}

	for _, ack := range accepted {
		change, ok := byUID[ack.UID]
		if !ok {
			t.log.Warn("сервер подтвердил неизвестную запись", "uid", ack.UID)
			continue
		}

		var err error
		switch change.Kind {
		case task.KindTask:
			err = t.storage.MarkTaskClean(ack.UID, change.UpdatedAt)
		case task.KindShortcut:
			err = t.storage.MarkShortcutClean(ack.UID, change.UpdatedAt)
		default:
			err = task.ErrUnknownKind
		}

		if err != nil {
			return fmt.Errorf("подтверждение %s: %w", ack.UID, err)
		}
	}

	return nil
}
