package health

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Pinger проверяет доступность базы данных
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	db         Pinger
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(db Pinger, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		db:         db,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

// healthCheck отвечает 200, пока жив процесс и отвечает база.
// Клиент считает любой другой статус недоступностью сервера.
func (h *Handler) healthCheck(ctx context.Context, _ *Input) (*Output, error) {
	if err := h.db.Ping(ctx); err != nil {
		h.log.Error("база данных недоступна", "error", err)
		return nil, huma.Error503ServiceUnavailable("база данных недоступна")
	}

	return &Output{
		Body: Response{
			Status:   "Ok",
			Database: "Ok",
		},
	}, nil
}
