package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timekeeper/internal/app/client/crypto"
	"timekeeper/internal/domain/user"
	"timekeeper/internal/utils/logger"
)

// newAuthServer поднимает сервер, принимающий любой proof и выдающий
// токены. Возвращает последний увиденный proof для проверок.
func newAuthServer(t *testing.T) (*httptest.Server, *string) {
	t.Helper()

	var lastProof string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req user.CredentialsRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		lastProof = req.SecretProof
		_ = json.NewEncoder(w).Encode(user.RegisterResponse{ID: 1, Status: "Ok"})
	})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req user.CredentialsRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		lastProof = req.SecretProof
		_ = json.NewEncoder(w).Encode(user.LoginResponse{
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresAt:    time.Now().Add(15 * time.Minute).Unix(),
			Status:       "Ok",
		})
	})
	mux.HandleFunc("/api/logout", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(user.LogoutResponse{Status: "Ok"})
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return ts, &lastProof
}

func newTestSession(t *testing.T) (*Session, *SQLiteStorage) {
	t.Helper()

	storage := newTestStorage(t)
	keyCache := crypto.NewKeyCache(filepath.Join(t.TempDir(), "session.key"))
	return NewSession(storage, keyCache, logger.New("local")), storage
}

func TestNormalizeServerURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "https", raw: "https://sync.example.com", want: "https://sync.example.com"},
		{name: "срезает хвостовой слэш", raw: "http://localhost:8080/", want: "http://localhost:8080"},
		{name: "без протокола", raw: "sync.example.com", wantErr: true},
		{name: "чужой протокол", raw: "ftp://sync.example.com", wantErr: true},
		{name: "пустой", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeServerURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSession_LoginNewAccount(t *testing.T) {
	ts, lastProof := newAuthServer(t)
	session, storage := newTestSession(t)

	err := session.Login(context.Background(), ts.URL, "user@example.com",
		[]byte("надёжная фраза"), true)
	require.NoError(t, err)
	assert.Equal(t, StateLoggedIn, session.State())

	// сервер получил proof, а не фразу
	assert.Equal(t, crypto.LoginProof("user@example.com", []byte("надёжная фраза")), *lastProof)
	assert.Len(t, *lastProof, 64)

	creds, err := storage.LoadCredentials()
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", creds.Email)
	assert.Equal(t, "refresh", creds.RefreshToken)
	assert.NotNil(t, creds.WrappedKey)

	// ключ аккаунта доступен без повторного ввода фразы
	key, err := session.AccountKey()
	require.NoError(t, err)
	assert.Len(t, key, 32)

	// новый аккаунт начинает с полной загрузки ленты
	cursor, err := storage.Cursor()
	require.NoError(t, err)
	assert.True(t, cursor.NeedsFullSync)
}

func TestSession_ReloginUnwrapsSameKey(t *testing.T) {
	ts, _ := newAuthServer(t)
	session, _ := newTestSession(t)

	require.NoError(t, session.Login(context.Background(), ts.URL,
		"user@example.com", []byte("надёжная фраза"), true))
	firstKey, err := session.AccountKey()
	require.NoError(t, err)

	require.NoError(t, session.Logout(context.Background()))

	require.NoError(t, session.Login(context.Background(), ts.URL,
		"user@example.com", []byte("надёжная фраза"), false))
	secondKey, err := session.AccountKey()
	require.NoError(t, err)

	assert.Equal(t, firstKey, secondKey, "повторный вход разворачивает тот же ключ")
}

func TestSession_ReloginWrongPassphrase(t *testing.T) {
	ts, _ := newAuthServer(t)
	session, _ := newTestSession(t)

	require.NoError(t, session.Login(context.Background(), ts.URL,
		"user@example.com", []byte("надёжная фраза"), true))
	require.NoError(t, session.Logout(context.Background()))

	// сервер фразу не проверяет, но развернуть ключ она не сможет
	err := session.Login(context.Background(), ts.URL,
		"user@example.com", []byte("другая фраза"), false)
	assert.ErrorIs(t, err, crypto.ErrWrongPassphrase)
	assert.NotEqual(t, StateLoggedIn, session.State())
}

func TestSession_UnlockAfterKeyCacheExpiry(t *testing.T) {
	ts, _ := newAuthServer(t)
	session, storage := newTestSession(t)

	require.NoError(t, session.Login(context.Background(), ts.URL,
		"user@example.com", []byte("надёжная фраза"), true))
	firstKey, err := session.AccountKey()
	require.NoError(t, err)

	// свежая сессия с пустым кэшем ключа - как после истечения окна
	restarted := NewSession(storage,
		crypto.NewKeyCache(filepath.Join(t.TempDir(), "session.key")),
		logger.New("local"))
	assert.Equal(t, StateLoggedIn, restarted.State())

	_, err = restarted.AccountKey()
	require.ErrorIs(t, err, crypto.ErrKeyNotLoaded)

	assert.ErrorIs(t, restarted.Unlock([]byte("другая фраза")), crypto.ErrWrongPassphrase)

	require.NoError(t, restarted.Unlock([]byte("надёжная фраза")))
	key, err := restarted.AccountKey()
	require.NoError(t, err)
	assert.Equal(t, firstKey, key, "фраза разворачивает тот же ключ аккаунта")
}

func TestSession_LogoutKeepsWrappedKey(t *testing.T) {
	ts, _ := newAuthServer(t)
	session, storage := newTestSession(t)

	require.NoError(t, session.Login(context.Background(), ts.URL,
		"user@example.com", []byte("надёжная фраза"), true))
	require.NoError(t, session.Logout(context.Background()))

	assert.Equal(t, StateLoggedOut, session.State())

	// токены затёрты, обёрнутый ключ остаётся для следующего входа
	creds, err := storage.LoadCredentials()
	require.NoError(t, err)
	assert.Empty(t, creds.AccessToken)
	assert.Empty(t, creds.RefreshToken)
	assert.NotNil(t, creds.WrappedKey)

	// развёрнутый ключ больше недоступен
	_, err = session.AccountKey()
	assert.ErrorIs(t, err, crypto.ErrKeyNotLoaded)
}
