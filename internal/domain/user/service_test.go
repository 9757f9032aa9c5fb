package user

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

type fakeUserRepo struct {
	users  map[string]User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]User)}
}

func (f *fakeUserRepo) Create(_ context.Context, email, proofHash string) (int, error) {
	if _, ok := f.users[email]; ok {
		return 0, ErrAlreadyExists
	}
	f.nextID++
	f.users[email] = User{ID: f.nextID, Email: email, Proof: proofHash}
	return f.nextID, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (User, error) {
	u, ok := f.users[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func proofFor(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

func TestRegisterAndAuthenticate(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, NewCredentialValidator(), slog.Default())
	proof := proofFor("секретная фраза")

	id, err := svc.Register(context.Background(), "User@Example.com", proof)
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	// Proof хранится как bcrypt-хэш, не в открытом виде
	stored := repo.users["user@example.com"]
	assert.NotEqual(t, proof, stored.Proof)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Proof), []byte(proof)))

	// Регистр адреса не влияет на вход
	u, err := svc.Authenticate(context.Background(), "USER@example.COM", proof)
	require.NoError(t, err)
	assert.Equal(t, 1, u.ID)
}

func TestAuthenticate_WrongProof(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, NewCredentialValidator(), slog.Default())

	_, err := svc.Register(context.Background(), "user@example.com", proofFor("верная фраза"))
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), "user@example.com", proofFor("другая фраза"))
	assert.ErrorIs(t, err, ErrInvalidAuth)
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	svc := NewService(newFakeUserRepo(), NewCredentialValidator(), slog.Default())

	_, err := svc.Authenticate(context.Background(), "nobody@example.com", proofFor("фраза"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegister_InvalidInput(t *testing.T) {
	svc := NewService(newFakeUserRepo(), NewCredentialValidator(), slog.Default())

	_, err := svc.Register(context.Background(), "not-an-email", proofFor("фраза"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register(context.Background(), "user@example.com", "короткий")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
