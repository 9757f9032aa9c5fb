package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/exp/slog"

	"timekeeper/internal/domain/sync"
	"timekeeper/internal/domain/user"
)

// httpClient - транспорт к серверу синхронизации. Тела задач он видит
// только в зашифрованном виде.
type httpClient struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	userAgent string
}

func newHTTPClient(baseURL string, log *slog.Logger) *httpClient {
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	return &httpClient{
		client:    client,
		log:       log.With("component", "http_client"),
		baseURL:   baseURL,
		userAgent: "Timekeeper-Client/1.0",
	}
}

// HealthCheck проверяет доступность сервера
func (h *httpClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", h.baseURL+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("сервер недоступен: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("сервер вернул статус: %d", resp.StatusCode)
	}

	return nil
}

// Register создает аккаунт на сервере
func (h *httpClient) Register(ctx context.Context, email, proof, deviceID string) error {
	req := user.CredentialsRequest{
		Email:       email,
		SecretProof: proof,
		DeviceID:    deviceID,
	}

	resp, err := h.doRequest(ctx, "POST", "/api/auth/register", "", req)
	if err != nil {
		return err
	}

	var registerResp user.RegisterResponse
	if err := h.parseResponse(resp, &registerResp); err != nil {
		return err
	}

	if registerResp.Status == "Error" {
		return fmt.Errorf("ошибка сервера: %s", registerResp.Error)
	}

	return nil
}

// Login обменивает учетные данные на пару токенов
func (h *httpClient) Login(ctx context.Context, email, proof, deviceID string) (*user.LoginResponse, error) {
	req := user.CredentialsRequest{
		Email:       email,
		SecretProof: proof,
		DeviceID:    deviceID,
	}

	resp, err := h.doRequest(ctx, "POST", "/api/auth/login", "", req)
	if err != nil {
		return nil, err
	}

	var loginResp user.LoginResponse
	if err := h.parseResponse(resp, &loginResp); err != nil {
		return nil, err
	}

	if loginResp.Status == "Error" {
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, loginResp.Error)
	}

	return &loginResp, nil
}

// Refresh обновляет токен доступа по refresh-токену
func (h *httpClient) Refresh(ctx context.Context, refreshToken string) (*user.LoginResponse, error) {
	req := user.RefreshRequest{RefreshToken: refreshToken}

	resp, err := h.doRequest(ctx, "POST", "/api/auth/refresh", "", req)
	if err != nil {
		return nil, err
	}

	var refreshResp user.LoginResponse
	if err := h.parseResponse(resp, &refreshResp); err != nil {
		return nil, err
	}

	if refreshResp.Status == "Error" {
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, refreshResp.Error)
	}

	return &refreshResp, nil
}

// Logout отзывает сессию устройства на сервере
func (h *httpClient) Logout(ctx context.Context, token, deviceID string) error {
	req := user.LogoutRequest{DeviceID: deviceID}

	resp, err := h.doRequest(ctx, "POST", "/api/logout", token, req)
	if err != nil {
		return err
	}

	var logoutResp user.LogoutResponse
	if err := h.parseResponse(resp, &logoutResp); err != nil {
		return err
	}

	if logoutResp.Status == "Error" {
		return fmt.Errorf("ошибка сервера: %s", logoutResp.Error)
	}

	return nil
}

// GetChanges забирает ленту изменений после указанной ревизии
func (h *httpClient) GetChanges(ctx context.Context, token string, since int64, limit int) (*sync.GetChangesResponse, error) {
	path := "/api/changes?since=" + strconv.FormatInt(since, 10) +
		"&limit=" + strconv.Itoa(limit)

	resp, err := h.doRequest(ctx, "GET", path, token, nil)
	if err != nil {
		return nil, err
	}

	var changesResp sync.GetChangesResponse
	if err := h.parseResponse(resp, &changesResp); err != nil {
		return nil, err
	}

	if changesResp.Status == "Error" {
		return nil, fmt.Errorf("ошибка сервера: %s", changesResp.Error)
	}

	return &changesResp, nil
}

// PushChanges отправляет пакет запечатанных записей
func (h *httpClient) PushChanges(ctx context.Context, token string, records []sync.ChangeRecord) (*sync.PushChangesResponse, error) {
	req := sync.PushChangesRequest{Records: records}

	resp, err := h.doRequest(ctx, "POST", "/api/changes", token, req)
	if err != nil {
		return nil, err
	}

	var pushResp sync.PushChangesResponse
	if err := h.parseResponse(resp, &pushResp); err != nil {
		return nil, err
	}

	if pushResp.Status == "Error" {
		return nil, fmt.Errorf("ошибка сервера: %s", pushResp.Error)
	}

	return &pushResp, nil
}

func (h *httpClient) doRequest(ctx context.Context, method, path, token string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	h.log.Debug("Отправка запроса",
		"method", method,
		"url", req.URL.String(),
	)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	return resp, nil
}

func (h *httpClient) parseResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	h.log.Debug("Получен ответ",
		"status", resp.StatusCode,
	)

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil {
			if errResp.Error != "" {
				return fmt.Errorf("ошибка сервера: %s", errResp.Error)
			}
			if errResp.Detail != "" {
				return fmt.Errorf("ошибка сервера: %s", errResp.Detail)
			}
		}
		return fmt.Errorf("ошибка сервера: статус %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("ошибка парсинга ответа: %w", err)
		}
	}

	return nil
}
