package task

import "errors"

var (
	// ErrNotFound - запись не найдена в локальном хранилище
	ErrNotFound = errors.New("запись не найдена")
	// ErrInvalidRecord - запись нарушает инварианты модели
	ErrInvalidRecord = errors.New("некорректная запись")
	// ErrUnknownKind - неизвестный тип записи в потоке изменений
	ErrUnknownKind = errors.New("неизвестный тип записи")
)
