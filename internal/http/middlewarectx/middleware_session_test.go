package middlewarectx_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/book-club/internal/http/middlewarectx"
	"github.com/magabrotheeeer/book-club/internal/http/sessioncookie"
	"github.com/magabrotheeeer/book-club/internal/lib/jwt"
	"github.com/magabrotheeeer/book-club/internal/models"
	"github.com/magabrotheeeer/book-club/internal/session"
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

// failingStore отвечает ошибкой инфраструктуры на любой запрос.
type failingStore struct {
	session.Store
}

func (failingStore) Get(context.Context, string) (*session.Session, error) {
	return nil, errors.New("redis down")
}

var (
	alice = models.PublicUser{ID: 1, Name: "Alice", Email: "alice@example.com", Role: models.RoleUser}
	admin = models.PublicUser{ID: 2, Name: "Root", Email: "root@example.com", Role: models.RoleAdmin}
)

func newCodec() *sessioncookie.Codec {
	return sessioncookie.New("bookclub.sid", false, "lax", jwt.NewJWTMaker("secret", "bookclub"))
}

func cookieFor(t *testing.T, codec *sessioncookie.Codec, id string) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, codec.Write(rec, id))
	return rec.Result().Cookies()[0]
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Error", body["status"])
	msg, _ := body["error"].(string)
	return msg
}

func TestRequireSession(t *testing.T) {
	ctx := context.Background()
	codec := newCodec()
	store := session.NewMemoryStore()

	valid, err := store.Create(ctx, alice)
	require.NoError(t, err)
	destroyed, err := store.Create(ctx, alice)
	require.NoError(t, err)
	require.NoError(t, store.Destroy(ctx, destroyed.ID))

	forged := sessioncookie.New("bookclub.sid", false, "lax", jwt.NewJWTMaker("other", "bookclub"))

	tests := []struct {
		name       string
		store      session.Store
		cookie     *http.Cookie
		wantStatus int
		wantError  string
		wantUser   *models.PublicUser
	}{
		{
			name:       "no cookie",
			store:      store,
			wantStatus: http.StatusUnauthorized,
			wantError:  middlewarectx.MsgLoginRequired,
		},
		{
			name:       "unsigned cookie",
			store:      store,
			cookie:     &http.Cookie{Name: "bookclub.sid", Value: valid.ID},
			wantStatus: http.StatusUnauthorized,
			wantError:  middlewarectx.MsgLoginRequired,
		},
		{
			name:       "forged signature",
			store:      store,
			cookie:     cookieFor(t, forged, valid.ID),
			wantStatus: http.StatusUnauthorized,
			wantError:  middlewarectx.MsgLoginRequired,
		},
		{
			name:       "destroyed session",
			store:      store,
			cookie:     cookieFor(t, codec, destroyed.ID),
			wantStatus: http.StatusUnauthorized,
			wantError:  middlewarectx.MsgLoginRequired,
		},
		{
			name:       "store failure",
			store:      failingStore{},
			cookie:     cookieFor(t, codec, valid.ID),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal error",
		},
		{
			name:       "valid session",
			store:      store,
			cookie:     cookieFor(t, codec, valid.ID),
			wantStatus: http.StatusOK,
			wantUser:   &alice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				user, ok := middlewarectx.UserFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, *tt.wantUser, user)
				w.WriteHeader(http.StatusOK)
			})

			h := middlewarectx.RequireSession(tt.store, codec, newNoopLogger())(next)
			req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUser != nil, called)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decodeError(t, rec))
			}
		})
	}
}

func TestRequireSession_TouchesSession(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := session.NewMemoryStore(session.WithIdleTimeout(time.Minute), session.WithClock(clock))
	codec := newCodec()

	sess, err := store.Create(ctx, alice)
	require.NoError(t, err)
	ck := cookieFor(t, codec, sess.ID)

	h := middlewarectx.RequireSession(store, codec, newNoopLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))

	now = now.Add(50 * time.Second)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(ck)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// активность продлила сессию
	now = now.Add(50 * time.Second)
	_, err = store.Get(ctx, sess.ID)
	assert.NoError(t, err)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		user       *models.PublicUser
		wantStatus int
	}{
		{name: "admin passes", user: &admin, wantStatus: http.StatusOK},
		{name: "user is rejected", user: &alice, wantStatus: http.StatusForbidden},
		{name: "no user in context fails closed", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})
			h := middlewarectx.RequireRole(models.RoleAdmin, newNoopLogger())(next)

			req := httptest.NewRequest(http.MethodDelete, "/api/books/1", nil)
			if tt.user != nil {
				req = req.WithContext(middlewarectx.WithUser(req.Context(), *tt.user))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, called)
			if tt.wantStatus == http.StatusForbidden {
				assert.Equal(t, middlewarectx.MsgAdminsOnly, decodeError(t, rec))
			}
		})
	}
}

func TestRequireSessionAndRole_Composed(t *testing.T) {
	ctx := context.Background()
	codec := newCodec()
	store := session.NewMemoryStore()
	log := newNoopLogger()

	r := chi.NewRouter()
	r.With(
		middlewarectx.RequireSession(store, codec, log),
		middlewarectx.RequireRole(models.RoleAdmin, log),
	).Delete("/api/books/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	userSess, err := store.Create(ctx, alice)
	require.NoError(t, err)
	adminSess, err := store.Create(ctx, admin)
	require.NoError(t, err)

	tests := []struct {
		name       string
		cookie     *http.Cookie
		wantStatus int
	}{
		{name: "anonymous", wantStatus: http.StatusUnauthorized},
		{name: "regular user", cookie: cookieFor(t, codec, userSess.ID), wantStatus: http.StatusForbidden},
		{name: "admin", cookie: cookieFor(t, codec, adminSess.ID), wantStatus: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/api/books/3", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
