package crypto

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapUnwrapKey(t *testing.T) {
	accountKey, err := GenerateAccountKey()
	require.NoError(t, err)

	wrapped, err := WrapKey(accountKey, []byte("парольная фраза"))
	require.NoError(t, err)
	assert.NotEqual(t, accountKey, wrapped.Ciphertext)
	assert.Len(t, wrapped.Params.Salt, saltLength)

	unwrapped, err := UnwrapKey(wrapped, []byte("парольная фраза"))
	require.NoError(t, err)
	assert.Equal(t, accountKey, unwrapped)
}

func TestUnwrapKey_WrongPassphrase(t *testing.T) {
	accountKey, err := GenerateAccountKey()
	require.NoError(t, err)

	wrapped, err := WrapKey(accountKey, []byte("верная фраза"))
	require.NoError(t, err)

	_, err = UnwrapKey(wrapped, []byte("неверная фраза"))
	assert.ErrorIs(t, err, ErrWrongPassphrase)
}

func TestWrapKey_FreshSaltEachTime(t *testing.T) {
	accountKey, err := GenerateAccountKey()
	require.NoError(t, err)

	w1, err := WrapKey(accountKey, []byte("фраза"))
	require.NoError(t, err)
	w2, err := WrapKey(accountKey, []byte("фраза"))
	require.NoError(t, err)

	assert.NotEqual(t, w1.Params.Salt, w2.Params.Salt)
	assert.NotEqual(t, w1.Ciphertext, w2.Ciphertext)
}

func TestLoginProof(t *testing.T) {
	proof := LoginProof("User@Example.com", []byte("фраза"))

	assert.Len(t, proof, 64)
	assert.Equal(t, proof, LoginProof("user@example.com", []byte("фраза")),
		"регистр адреса не влияет на proof")
	assert.NotEqual(t, proof, LoginProof("user@example.com", []byte("другая")))
	assert.NotEqual(t, proof, LoginProof("other@example.com", []byte("фраза")))
}

func TestSealOpen(t *testing.T) {
	key, err := GenerateAccountKey()
	require.NoError(t, err)
	sealer, err := NewSealer(key)
	require.NoError(t, err)

	plaintext := []byte(`{"name":"Задача","start_time":1000}`)
	ciphertext, nonce, err := sealer.Seal(plaintext)
	require.NoError(t, err)
	assert.Len(t, nonce, 12)
	assert.NotContains(t, string(ciphertext), "Задача")

	opened, err := sealer.Open(ciphertext, nonce)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestSeal_FreshNonceEachCall(t *testing.T) {
	key, err := GenerateAccountKey()
	require.NoError(t, err)
	sealer, err := NewSealer(key)
	require.NoError(t, err)

	plaintext := []byte("одно и то же содержимое")
	c1, n1, err := sealer.Seal(plaintext)
	require.NoError(t, err)
	c2, n2, err := sealer.Seal(plaintext)
	require.NoError(t, err)

	assert.NotEqual(t, n1, n2)
	assert.NotEqual(t, c1, c2)
}

func TestOpen_Corrupted(t *testing.T) {
	key, err := GenerateAccountKey()
	require.NoError(t, err)
	sealer, err := NewSealer(key)
	require.NoError(t, err)

	ciphertext, nonce, err := sealer.Seal([]byte("данные"))
	require.NoError(t, err)

	ciphertext[0] ^= 0xFF
	_, err = sealer.Open(ciphertext, nonce)
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestOpen_WrongKey(t *testing.T) {
	key1, err := GenerateAccountKey()
	require.NoError(t, err)
	key2, err := GenerateAccountKey()
	require.NoError(t, err)

	s1, err := NewSealer(key1)
	require.NoError(t, err)
	s2, err := NewSealer(key2)
	require.NoError(t, err)

	ciphertext, nonce, err := s1.Seal([]byte("данные"))
	require.NoError(t, err)

	_, err = s2.Open(ciphertext, nonce)
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestNewSealer_BadKeyLength(t *testing.T) {
	_, err := NewSealer([]byte("короткий ключ"))
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint([]byte("abc")), Fingerprint([]byte("abc")))
	assert.NotEqual(t, Fingerprint([]byte("abc")), Fingerprint([]byte("abd")))
	assert.Len(t, Fingerprint([]byte("abc")), 64)
}

func TestKeyCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.key")
	cache := NewKeyCache(path)

	_, err := cache.Load()
	assert.ErrorIs(t, err, ErrKeyNotLoaded)

	key, err := GenerateAccountKey()
	require.NoError(t, err)
	require.NoError(t, cache.Save(key))

	loaded, err := cache.Load()
	require.NoError(t, err)
	assert.Equal(t, key, loaded)

	require.NoError(t, cache.Clear())
	_, err = cache.Load()
	assert.ErrorIs(t, err, ErrKeyNotLoaded)
}
