package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/book-club/internal/http/response"
	"github.com/magabrotheeeer/book-club/internal/models"
)

// RequireRole пропускает запрос только для пользователя с ролью role.
// Без пользователя в контексте запрос отклоняется с 403.
func RequireRole(role models.Role, log *slog.Logger) func(http.Handler) http.Handler {
	msg := "Forbidden"
	if role == models.RoleAdmin {
		msg = MsgAdminsOnly
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user.Role != role {
				log.Warn("access denied",
					slog.String("op", "middlewarectx.RequireRole"),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.Int64("user_id", user.ID),
					slog.String("required_role", string(role)),
				)
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error(msg))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
