package sessioncookie

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/book-club/internal/lib/jwt"
)

func newCodec() *Codec {
	return New("bookclub.sid", true, "strict", jwt.NewJWTMaker("secret", "bookclub"))
}

func TestCodec_RoundTrip(t *testing.T) {
	c := newCodec()
	rec := httptest.NewRecorder()
	require.NoError(t, c.Write(rec, "session-id"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	ck := cookies[0]
	assert.Equal(t, "bookclub.sid", ck.Name)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, "/", ck.Path)
	assert.Equal(t, http.SameSiteStrictMode, ck.SameSite)
	assert.NotEqual(t, "session-id", ck.Value)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(ck)
	id, err := c.Read(req)
	require.NoError(t, err)
	assert.Equal(t, "session-id", id)
}

func TestCodec_Read_Errors(t *testing.T) {
	c := newCodec()
	other := New("bookclub.sid", false, "lax", jwt.NewJWTMaker("other-secret", "bookclub"))

	rec := httptest.NewRecorder()
	require.NoError(t, other.Write(rec, "session-id"))
	forged := rec.Result().Cookies()[0]

	tests := []struct {
		name    string
		cookie  *http.Cookie
		wantErr error
	}{
		{name: "no cookie", wantErr: ErrNoCookie},
		{name: "empty value", cookie: &http.Cookie{Name: "bookclub.sid"}, wantErr: ErrNoCookie},
		{name: "raw session id", cookie: &http.Cookie{Name: "bookclub.sid", Value: "session-id"}, wantErr: jwt.ErrInvalidToken},
		{name: "signed with another secret", cookie: forged, wantErr: jwt.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			_, err := c.Read(req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCodec_Clear(t *testing.T) {
	rec := httptest.NewRecorder()
	newCodec().Clear(rec)

	ck := rec.Result().Cookies()[0]
	assert.Equal(t, "bookclub.sid", ck.Name)
	assert.Empty(t, ck.Value)
	assert.Equal(t, -1, ck.MaxAge)
}
