package sync

import "context"

// Repository интерфейс хранилища потока изменений
type Repository interface {
	// ListChangesSince возвращает записи аккаунта с revision > since
	// в порядке возрастания ревизии
	ListChangesSince(ctx context.Context, userID int, since int64, limit int) ([]*ChangeRecord, error)

	// ApplyChange атомарно применяет версию записи: правило wins
	// вычисляется под блокировкой текущей строки, поэтому конкурентный
	// push не может затереть более новую версию. Возвращается выжившая
	// версия с её ревизией.
	ApplyChange(ctx context.Context, userID int, record *ChangeRecord, wins func(existing, incoming *ChangeRecord) bool) (*ChangeRecord, error)

	// HeadRevision возвращает последнюю присвоенную ревизию аккаунта
	HeadRevision(ctx context.Context, userID int) (int64, error)
}
