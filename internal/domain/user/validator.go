package user

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	MaxEmailLen = 254
	ProofHexLen = 64 // hex от sha256
)

// Validator - интерфейс для валидации пользовательских данных
type Validator interface {
	ValidateRegister(email, proof string) error
	ValidateEmail(email string) error
	ValidateProof(proof string) error
}

type CredentialValidator struct{}

// NewCredentialValidator создает новый валидатор
func NewCredentialValidator() *CredentialValidator {
	return &CredentialValidator{}
}

// ValidateRegister валидирует данные для регистрации
func (v *CredentialValidator) ValidateRegister(email, proof string) error {
	if err := v.ValidateEmail(email); err != nil {
		return fmt.Errorf("email validation failed: %w", err)
	}

	if err := v.ValidateProof(proof); err != nil {
		return fmt.Errorf("proof validation failed: %w", err)
	}

	return nil
}

// ValidateEmail валидирует адрес почты
func (v *CredentialValidator) ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}

	if len(email) > MaxEmailLen {
		return fmt.Errorf("email must be at most %d characters", MaxEmailLen)
	}

	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("email must contain a local part and a domain")
	}

	if strings.ContainsAny(email, " \t\n") {
		return fmt.Errorf("email must not contain whitespace")
	}

	return nil
}

// ValidateProof проверяет, что secret_proof - hex-дайджест sha256
func (v *CredentialValidator) ValidateProof(proof string) error {
	if len(proof) != ProofHexLen {
		return fmt.Errorf("proof must be exactly %d hex characters", ProofHexLen)
	}

	if _, err := hex.DecodeString(proof); err != nil {
		return fmt.Errorf("proof must be hex-encoded")
	}

	return nil
}
