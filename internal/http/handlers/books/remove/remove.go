// Package remove реализует HTTP-обработчик удаления книги. Маршрут доступен только администраторам.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/book-club/internal/http/middlewarectx"
	"github.com/magabrotheeeer/book-club/internal/http/response"
	"github.com/magabrotheeeer/book-club/internal/lib/sl"
	"github.com/magabrotheeeer/book-club/internal/models"
	"github.com/magabrotheeeer/book-club/internal/services/books"
)

// Handler обрабатывает запросы на удаление книги.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления книги.
type Service interface {
	Delete(ctx context.Context, user models.PublicUser, id int64) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить книгу
// @Description Только для роли admin.
// @Tags Books
// @Produce  json
// @Param id path int true "ID книги"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 403 {object} response.ErrorResponse "Admins only"
// @Failure 404 {object} response.ErrorResponse "Книга не найдена"
// @Router /api/books/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.books.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("invalid id format", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	user, _ := middlewarectx.UserFromContext(r.Context())
	if err := h.service.Delete(r.Context(), user, id); err != nil {
		if errors.Is(err, books.ErrNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("book not found"))
			return
		}
		log.Error("failed to delete book", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to delete book"))
		return
	}

	log.Info("book deleted", slog.Int64("book_id", id))
	render.JSON(w, r, response.OK("Book deleted"))
}
