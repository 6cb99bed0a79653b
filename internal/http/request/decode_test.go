package request

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Email string `json:"email" validate:"required,email"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		isEmpty bool
	}{
		{name: "valid", body: `{"email":"a@b.co"}`},
		{name: "unknown field", body: `{"email":"a@b.co","role":"admin"}`, wantErr: true},
		{name: "not json", body: `nope`, wantErr: true},
		{name: "empty", body: ``, wantErr: true, isEmpty: true},
		{name: "two objects", body: `{"email":"a@b.co"}{"email":"c@d.co"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := DecodeJSON(httptest.NewRecorder(), r, &p)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "a@b.co", p.Email)
				return
			}
			require.Error(t, err)
			if tt.isEmpty {
				assert.ErrorIs(t, err, ErrEmptyBody)
			}
		})
	}
}

func TestValidationErrors(t *testing.T) {
	err := Validator.Struct(payload{Email: "bad"})
	verrs, ok := ValidationErrors(err)
	require.True(t, ok)
	assert.Len(t, verrs, 1)

	_, ok = ValidationErrors(assert.AnError)
	assert.False(t, ok)
}

func TestHasTag(t *testing.T) {
	verrs, ok := ValidationErrors(Validator.Struct(payload{}))
	require.True(t, ok)
	assert.True(t, HasTag(verrs, "required"))
	assert.False(t, HasTag(verrs, "email"))
}
