package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"timekeeper/internal/app/client/crypto"
)

// SessionState - состояние менеджера сессии
type SessionState string

const (
	StateLoggedOut      SessionState = "logged_out"
	StateLoggingIn      SessionState = "logging_in"
	StateLoggedIn       SessionState = "logged_in"
	StateReauthRequired SessionState = "reauth_required"
)

// Запас до истечения токена, после которого обновляем его заранее
const tokenExpiryMargin = 30 * time.Second

// Session владеет жизненным циклом учетных данных: вход, выход,
// прозрачное обновление токена и обнаружение отзыва сессии сервером.
// Парольная фраза живет только внутри Login/Unlock.
type Session struct {
	storage  *SQLiteStorage
	keyCache *crypto.KeyCache
	log      *slog.Logger

	mu         gosync.Mutex
	api        *httpClient
	state      SessionState
	accountKey []byte
}

// NewSession создает менеджер сессии и восстанавливает состояние
// из сохранённого аккаунта
func NewSession(storage *SQLiteStorage, keyCache *crypto.KeyCache, log *slog.Logger) *Session {
	s := &Session{
		storage:  storage,
		keyCache: keyCache,
		log:      log.With("component", "session"),
		state:    StateLoggedOut,
	}

	if creds, err := storage.LoadCredentials(); err == nil && creds.RefreshToken != "" {
		s.api = newHTTPClient(creds.ServerURL, log)
		s.state = StateLoggedIn
	}

	return s
}

// State возвращает текущее состояние сессии
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Login выполняет вход: проверяет адрес сервера, обменивает proof на
// токены и разворачивает ключ аккаунта. При register сначала создает
// аккаунт на сервере.
func (s *Session) Login(ctx context.Context, serverURL, email string, passphrase []byte, register bool) error {
	serverURL, err := normalizeServerURL(serverURL)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state = StateLoggingIn
	s.mu.Unlock()

	api := newHTTPClient(serverURL, s.log)
	proof := crypto.LoginProof(email, passphrase)

	existing, credErr := s.storage.LoadCredentials()
	sameAccount := credErr == nil && strings.EqualFold(existing.Email, email)

	deviceID := uuid.NewString()
	if sameAccount {
		deviceID = existing.DeviceID
	}

	if register {
		if err := api.Register(ctx, email, proof, deviceID); err != nil {
			s.failLogin()
			return fmt.Errorf("регистрация: %w", err)
		}
	}

	loginResp, err := api.Login(ctx, email, proof, deviceID)
	if err != nil {
		s.failLogin()
		return fmt.Errorf("вход: %w", err)
	}

	// Ключ аккаунта: на знакомом аккаунте разворачиваем сохранённый,
	// на новом - генерируем и оборачиваем той же фразой
	var accountKey []byte
	var wrapped *crypto.WrappedKey

	if sameAccount {
		wrapped = existing.WrappedKey
		accountKey, err = crypto.UnwrapKey(wrapped, passphrase)
		if err != nil {
			s.failLogin()
			return err
		}
	} else {
		accountKey, err = crypto.GenerateAccountKey()
		if err != nil {
			s.failLogin()
			return err
		}
		wrapped, err = crypto.WrapKey(accountKey, passphrase)
		if err != nil {
			s.failLogin()
			return err
		}
	}

	creds := &Credentials{
		Email:           email,
		ServerURL:       serverURL,
		DeviceID:        deviceID,
		WrappedKey:      wrapped,
		AccessToken:     loginResp.AccessToken,
		RefreshToken:    loginResp.RefreshToken,
		AccessExpiresAt: loginResp.ExpiresAt,
	}

	if err := s.storage.SaveCredentials(creds); err != nil {
		s.failLogin()
		return err
	}

	// Смена аккаунта обесценивает водяной знак: ленту придется
	// забрать с нуля
	if !sameAccount {
		if err := s.storage.RequestFullSync(); err != nil {
			return err
		}
	}

	if err := s.keyCache.Save(accountKey); err != nil {
		s.log.Warn("не удалось сохранить ключ в кэш", "error", err)
	}

	s.mu.Lock()
	s.api = api
	s.state = StateLoggedIn
	s.accountKey = accountKey
	s.mu.Unlock()

	s.log.Info("вход выполнен", "email", email, "device_id", deviceID)
	return nil
}

func (s *Session) failLogin() {
	s.mu.Lock()
	s.state = StateLoggedOut
	s.mu.Unlock()
}

// Logout отзывает сессию устройства и затирает секреты. Обёрнутый ключ
// остаётся на диске для следующего входа.
func (s *Session) Logout(ctx context.Context) error {
	creds, err := s.storage.LoadCredentials()
	if err != nil {
		return err
	}

	api, err := s.apiClient()
	if err == nil && creds.AccessToken != "" {
		if err := api.Logout(ctx, creds.AccessToken, creds.DeviceID); err != nil {
			s.log.Warn("не удалось отозвать сессию на сервере", "error", err)
		}
	}

	if err := s.storage.UpdateTokens("", "", 0); err != nil {
		return err
	}

	if err := s.keyCache.Clear(); err != nil {
		s.log.Warn("не удалось очистить кэш ключа", "error", err)
	}

	s.mu.Lock()
	crypto.ClearMemory(s.accountKey)
	s.accountKey = nil
	s.state = StateLoggedOut
	s.mu.Unlock()

	return nil
}

// AccountKey возвращает развёрнутый ключ аккаунта. ErrKeyNotLoaded
// означает, что нужен Unlock с парольной фразой.
func (s *Session) AccountKey() ([]byte, error) {
	s.mu.Lock()
	if s.accountKey != nil {
		key := s.accountKey
		s.mu.Unlock()
		return key, nil
	}
	s.mu.Unlock()

	key, err := s.keyCache.Load()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.accountKey = key
	s.mu.Unlock()

	return key, nil
}

// Unlock разворачивает ключ аккаунта парольной фразой, когда кэш
// ключа истёк
func (s *Session) Unlock(passphrase []byte) error {
	creds, err := s.storage.LoadCredentials()
	if err != nil {
		return err
	}

	key, err := crypto.UnwrapKey(creds.WrappedKey, passphrase)
	if err != nil {
		return err
	}

	if err := s.keyCache.Save(key); err != nil {
		s.log.Warn("не удалось сохранить ключ в кэш", "error", err)
	}

	s.mu.Lock()
	s.accountKey = key
	s.mu.Unlock()

	return nil
}

// WithToken выполняет запрос с актуальным токеном доступа. Отклонённый
// сервером токен обновляется и запрос повторяется один раз; повторный
// отказ переводит сессию в ReauthRequired.
func (s *Session) WithToken(ctx context.Context, fn func(token string) error) error {
	token, err := s.accessToken(ctx, false)
	if err != nil {
		return err
	}

	err = fn(token)
	if !errors.Is(err, ErrUnauthorized) {
		return err
	}

	token, err = s.accessToken(ctx, true)
	if err != nil {
		return err
	}

	err = fn(token)
	if errors.Is(err, ErrUnauthorized) {
		s.suspend()
		return ErrReauthRequired
	}

	return err
}

// accessToken возвращает действующий токен доступа, при необходимости
// обновляя его по refresh-токену
func (s *Session) accessToken(ctx context.Context, force bool) (string, error) {
	if s.State() == StateReauthRequired {
		return "", ErrReauthRequired
	}

	creds, err := s.storage.LoadCredentials()
	if err != nil {
		return "", err
	}

	if creds.RefreshToken == "" {
		return "", ErrReauthRequired
	}

	expiresAt := time.Unix(creds.AccessExpiresAt, 0)
	if !force && creds.AccessToken != "" && time.Now().Add(tokenExpiryMargin).Before(expiresAt) {
		return creds.AccessToken, nil
	}

	api, err := s.apiClient()
	if err != nil {
		return "", err
	}

	resp, err := api.Refresh(ctx, creds.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			s.suspend()
			return "", ErrReauthRequired
		}
		return "", fmt.Errorf("обновление токена: %w", err)
	}

	if err := s.storage.UpdateTokens(resp.AccessToken, resp.RefreshToken, resp.ExpiresAt); err != nil {
		return "", err
	}

	return resp.AccessToken, nil
}

func (s *Session) suspend() {
	s.mu.Lock()
	s.state = StateReauthRequired
	s.mu.Unlock()
}

func (s *Session) apiClient() (*httpClient, error) {
	s.mu.Lock()
	if s.api != nil {
		api := s.api
		s.mu.Unlock()
		return api, nil
	}
	s.mu.Unlock()

	creds, err := s.storage.LoadCredentials()
	if err != nil {
		return nil, err
	}

	api := newHTTPClient(creds.ServerURL, s.log)

	s.mu.Lock()
	s.api = api
	s.mu.Unlock()

	return api, nil
}

// normalizeServerURL требует явного протокола в адресе сервера
func normalizeServerURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("некорректный адрес сервера: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("адрес сервера должен начинаться с http:// или https://")
	}
	if u.Host == "" {
		return "", fmt.Errorf("в адресе сервера отсутствует хост")
	}

	return strings.TrimRight(u.String(), "/"), nil
}
