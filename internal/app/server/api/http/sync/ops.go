package sync

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) getChangesOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-get-changes",
		Method:      http.MethodGet,
		Path:        "/api/changes",
		Summary:     "Получить изменения для синхронизации",
		Description: "Возвращает записи аккаунта с ревизией больше указанной, в порядке возрастания ревизии",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) pushChangesOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-push-changes",
		Method:      http.MethodPost,
		Path:        "/api/changes",
		Summary:     "Принять пакет изменений",
		Description: "Идемпотентно принимает зашифрованные записи устройства и присваивает им серверные ревизии",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}
