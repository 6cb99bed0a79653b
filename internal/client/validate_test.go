package client

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterForm_Validate(t *testing.T) {
	tests := []struct {
		name       string
		form       RegisterForm
		wantFields []string
	}{
		{name: "valid", form: RegisterForm{Name: "Alice", Email: "alice@example.com", Password: "abc123"}},
		{name: "short name", form: RegisterForm{Name: "A", Email: "alice@example.com", Password: "abc123"}, wantFields: []string{"name"}},
		{name: "name with digits", form: RegisterForm{Name: "Al1ce", Email: "alice@example.com", Password: "abc123"}, wantFields: []string{"name"}},
		{name: "bad email", form: RegisterForm{Name: "Alice", Email: "alice.example.com", Password: "abc123"}, wantFields: []string{"email"}},
		{name: "password too long", form: RegisterForm{Name: "Alice", Email: "alice@example.com", Password: "abcdef123"}, wantFields: []string{"password"}},
		{name: "password without digit", form: RegisterForm{Name: "Alice", Email: "alice@example.com", Password: "abcdef"}, wantFields: []string{"password"}},
		{name: "password without letter", form: RegisterForm{Name: "Alice", Email: "alice@example.com", Password: "123456"}, wantFields: []string{"password"}},
		{name: "password with symbol", form: RegisterForm{Name: "Alice", Email: "alice@example.com", Password: "ab1!"}, wantFields: []string{"password"}},
		{name: "everything wrong", form: RegisterForm{}, wantFields: []string{"name", "email", "password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var ferrs FormErrors
			require.True(t, errors.As(err, &ferrs))
			assert.Len(t, ferrs, len(tt.wantFields))
			for _, f := range tt.wantFields {
				assert.Contains(t, ferrs, f)
			}
		})
	}
}

func TestValidateLogin(t *testing.T) {
	assert.NoError(t, ValidateLogin("alice@example.com", "whatever"))
	assert.EqualError(t, ValidateLogin(" ", "abc123"), MsgEmptyCredential)
	assert.EqualError(t, ValidateLogin("alice@example.com", ""), MsgEmptyCredential)
}
