// Package middlewarectx содержит HTTP middleware аутентификации и авторизации.
//
// RequireSession проверяет подписанную cookie сессии, находит сессию в хранилище
// и кладёт публичные данные пользователя в контекст запроса. RequireRole
// пропускает запрос дальше только для пользователя с нужной ролью.
//
// Middleware не зависят друг от друга и подключаются в любом сочетании.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/book-club/internal/http/response"
	"github.com/magabrotheeeer/book-club/internal/lib/sl"
	"github.com/magabrotheeeer/book-club/internal/models"
	"github.com/magabrotheeeer/book-club/internal/session"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// User — ключ публичных данных пользователя в контексте.
const User Key = "user"

// Сообщения об отказе в доступе.
const (
	MsgLoginRequired = "You must be logged in"
	MsgAdminsOnly    = "Admins only"
)

// CookieReader извлекает идентификатор сессии из запроса.
type CookieReader interface {
	Read(r *http.Request) (string, error)
}

// WithUser возвращает контекст с пользователем текущей сессии.
func WithUser(ctx context.Context, user models.PublicUser) context.Context {
	return context.WithValue(ctx, User, user)
}

// UserFromContext возвращает пользователя, положенного RequireSession.
func UserFromContext(ctx context.Context) (models.PublicUser, bool) {
	u, ok := ctx.Value(User).(models.PublicUser)
	return u, ok
}

// RequireSession возвращает middleware, который пропускает только запросы
// с действующей сессией. Иначе отвечает 401, при отказе хранилища 500.
func RequireSession(store session.Store, cookies CookieReader, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireSession"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			id, err := cookies.Read(r)
			if err != nil {
				log.Debug("no valid session cookie", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(MsgLoginRequired))
				return
			}

			sess, err := store.Get(r.Context(), id)
			if err != nil {
				if errors.Is(err, session.ErrNotFound) {
					log.Debug("session not found")
					render.Status(r, http.StatusUnauthorized)
					render.JSON(w, r, response.Error(MsgLoginRequired))
					return
				}
				log.Error("failed to load session", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
				return
			}

			if err := store.Touch(r.Context(), id); err != nil {
				log.Warn("failed to touch session", sl.Err(err))
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), sess.User)))
		})
	}
}
