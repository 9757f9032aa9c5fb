package user

import (
	"context"

	"timekeeper/internal/app/server/api/http/middleware/auth"
	"timekeeper/internal/domain/session"
	"timekeeper/internal/domain/user"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

type Handler struct {
	service        user.Servicer
	session        session.Servicer
	log            *slog.Logger
	middleware     huma.Middlewares
	authMiddleware huma.Middlewares
}

func NewHandler(service user.Servicer, sessionSvc session.Servicer, log *slog.Logger, middleware, authMiddleware huma.Middlewares) *Handler {
	return &Handler{
		service:        service,
		session:        sessionSvc,
		log:            log,
		middleware:     middleware,
		authMiddleware: authMiddleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.registerOp(), h.register)
	huma.Register(api, h.loginOp(), h.login)
	huma.Register(api, h.refreshOp(), h.refresh)
	huma.Register(api, h.logoutOp(), h.logout)
}

func (h *Handler) register(ctx context.Context, input *registerInput) (*registerOutput, error) {
	userID, err := h.service.Register(ctx, input.Body.Email, input.Body.SecretProof)
	if err != nil {
		return &registerOutput{
			Body: user.RegisterResponse{Status: "Error", Error: err.Error()},
		}, nil
	}

	return &registerOutput{
		Body: user.RegisterResponse{ID: userID, Status: "Ok"},
	}, nil
}

func (h *Handler) login(ctx context.Context, input *loginInput) (*loginOutput, error) {
	u, err := h.service.Authenticate(ctx, input.Body.Email, input.Body.SecretProof)
	if err != nil {
		return &loginOutput{
			Body: user.LoginResponse{
				Status: "Error",
				Error:  "Invalid credentials",
			},
		}, nil
	}

	pair, err := h.session.Create(ctx, u.ID, input.Body.DeviceID)
	if err != nil {
		h.log.Error("создание сессии", "error", err)
		return &loginOutput{
			Body: user.LoginResponse{Status: "Error", Error: err.Error()},
		}, nil
	}

	return &loginOutput{
		Body: user.LoginResponse{
			AccessToken:  pair.Access,
			RefreshToken: pair.Refresh,
			ExpiresAt:    pair.ExpiresAt.Unix(),
			Status:       "Ok",
		},
	}, nil
}

func (h *Handler) refresh(ctx context.Context, input *refreshInput) (*refreshOutput, error) {
	pair, err := h.session.Refresh(ctx, input.Body.RefreshToken)
	if err != nil {
		return &refreshOutput{
			Body: user.LoginResponse{Status: "Error", Error: "Invalid session"},
		}, nil
	}

	return &refreshOutput{
		Body: user.LoginResponse{
			AccessToken:  pair.Access,
			RefreshToken: pair.Refresh,
			ExpiresAt:    pair.ExpiresAt.Unix(),
			Status:       "Ok",
		},
	}, nil
}

func (h *Handler) logout(ctx context.Context, input *logoutInput) (*logoutOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return &logoutOutput{
			Body: user.LogoutResponse{Status: "Error", Error: "Unauthorized"},
		}, nil
	}

	if err := h.session.RevokeDevice(ctx, userID, input.Body.DeviceID); err != nil {
		return &logoutOutput{
			Body: user.LogoutResponse{Status: "Error", Error: err.Error()},
		}, nil
	}

	return &logoutOutput{
		Body: user.LogoutResponse{Status: "Ok"},
	}, nil
}
