package user

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

type Servicer interface {
	Register(ctx context.Context, email, proof string) (int, error)
	Authenticate(ctx context.Context, email, proof string) (User, error)
}

type Service struct {
	repo      Repository
	validator Validator
	log       *slog.Logger
}

func NewService(repo Repository, validator Validator, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		validator: validator,
		log:       log,
	}
}

// Register создает аккаунт. Вместо пароля клиент присылает secret_proof -
// детерминированный дайджест от парольной фразы; здесь он хэшируется
// bcrypt'ом, как обычный пароль.
func (s *Service) Register(ctx context.Context, email, proof string) (int, error) {
	email = normalizeEmail(email)
	if err := s.validator.ValidateRegister(email, proof); err != nil {
		s.log.Debug("validation failed", "email", email, "error", err)
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(proof), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("хэш secret_proof: %w", err)
	}

	return s.repo.Create(ctx, email, string(hash))
}

// Authenticate проверяет secret_proof и возвращает аккаунт
func (s *Service) Authenticate(ctx context.Context, email, proof string) (User, error) {
	email = normalizeEmail(email)
	if err := s.validator.ValidateEmail(email); err != nil {
		return User{}, ErrInvalidAuth
	}

	usr, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return usr, ErrNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.Proof), []byte(proof)); err != nil {
		return usr, ErrInvalidAuth
	}

	return usr, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
