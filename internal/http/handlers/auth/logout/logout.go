// Package logout реализует HTTP-обработчик выхода пользователя.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/book-club/internal/http/response"
	"github.com/magabrotheeeer/book-club/internal/lib/sl"
)

// MsgLoggedOut — ответ на выход.
const MsgLoggedOut = "Logged out"

// Service описывает интерфейс бизнес-логики выхода.
type Service interface {
	Logout(ctx context.Context, sessionID string) error
}

// Cookies читает и удаляет cookie сессии.
type Cookies interface {
	Read(r *http.Request) (string, error)
	Clear(w http.ResponseWriter)
}

// Handler обрабатывает запросы на выход.
type Handler struct {
	log     *slog.Logger
	service Service
	cookies Cookies
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, cookies Cookies) *Handler {
	return &Handler{
		log:     log,
		service: service,
		cookies: cookies,
	}
}

// ServeHTTP godoc
// @Summary Выход пользователя
// @Description Уничтожает сессию, если она есть, и удаляет cookie. Всегда успешен.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response "Сессия завершена"
// @Router /api/users/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if id, err := h.cookies.Read(r); err == nil {
		if err := h.service.Logout(r.Context(), id); err != nil {
			log.Error("logout failed", sl.Err(err))
		}
	}
	h.cookies.Clear(w)

	render.JSON(w, r, response.OK(MsgLoggedOut))
}
