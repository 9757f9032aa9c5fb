package health

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) healthCheckOp() huma.Operation {
	return huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Liveness-проба",
		Description: "Проверяет процесс и соединение с базой данных",
		Tags:        []string{"health"},
		Middlewares: h.middleware,
	}
}
