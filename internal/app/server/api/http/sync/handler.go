package sync

import (
	"context"

	"timekeeper/internal/domain/sync"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

type Handler struct {
	service    sync.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service sync.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.getChangesOp(), h.getChanges)
	huma.Register(api, h.pushChangesOp(), h.pushChanges)
}

func (h *Handler) getChanges(ctx context.Context, input *getChangesInput) (*getChangesOutput, error) {
	response, err := h.service.GetChanges(ctx, sync.GetChangesRequest{
		Since: input.Since,
		Limit: input.Limit,
	})
	if err != nil {
		return &getChangesOutput{
			Body: sync.GetChangesResponse{
				Status: "Error",
				Error:  err.Error(),
			},
		}, nil
	}

	return &getChangesOutput{
		Body: *response,
	}, nil
}

func (h *Handler) pushChanges(ctx context.Context, input *pushChangesInput) (*pushChangesOutput, error) {
	response, err := h.service.PushChanges(ctx, input.Body)
	if err != nil {
		return &pushChangesOutput{
			Body: sync.PushChangesResponse{
				Status: "Error",
				Error:  err.Error(),
			},
		}, nil
	}

	return &pushChangesOutput{
		Body: *response,
	}, nil
}
