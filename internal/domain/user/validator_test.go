package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	v := NewCredentialValidator()

	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"корректный адрес", "user@example.com", false},
		{"пустой", "", true},
		{"без домена", "user@", true},
		{"без локальной части", "@example.com", true},
		{"без @", "userexample.com", true},
		{"с пробелом", "us er@example.com", true},
		{"слишком длинный", strings.Repeat("a", 250) + "@x.io", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateProof(t *testing.T) {
	v := NewCredentialValidator()

	valid := strings.Repeat("ab", 32)
	assert.NoError(t, v.ValidateProof(valid))

	assert.Error(t, v.ValidateProof(""), "пустой proof")
	assert.Error(t, v.ValidateProof(valid[:60]), "короткий proof")
	assert.Error(t, v.ValidateProof(strings.Repeat("zz", 32)), "не hex")
}
