// Package register реализует HTTP-обработчик регистрации пользователя.
//
// Обработчик декодирует JSON с именем, email и паролем, проверяет обязательные поля
// и делегирует создание учётной записи сервису аутентификации.
// Сессия при регистрации не создаётся: после успеха клиент выполняет вход отдельно.
package register

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/book-club/internal/http/request"
	"github.com/magabrotheeeer/book-club/internal/http/response"
	"github.com/magabrotheeeer/book-club/internal/lib/sl"
	"github.com/magabrotheeeer/book-club/internal/services/auth"
)

// Сообщения ответов.
const (
	MsgSuccess        = "Registration successful! You can now log in."
	MsgFieldsRequired = "All fields are required"
	MsgDuplicateEmail = "Email already registered. Please use a different email."
	MsgDatabaseError  = "Database error. Please try again later."
	MsgPasswordLong   = "Password must be at most 72 bytes"
	MsgInternalError  = "Internal error. Please try again later."
)

// Request — входные данные для регистрации.
type Request struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

// Response — ответ на успешную регистрацию.
type Response struct {
	Status  string `json:"status" example:"OK"`
	Message string `json:"message" example:"Registration successful! You can now log in."`
	ID      int64  `json:"id" example:"1"`
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, name, email, password string) (int64, error)
}

// Handler обрабатывает HTTP-запросы на регистрацию.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Создаёт учётную запись с ролью user. Сессию не создаёт.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные нового пользователя"
// @Success 201 {object} Response "Пользователь создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 409 {object} response.ErrorResponse "Email уже зарегистрирован"
// @Failure 500 {object} response.ErrorResponse "Ошибка базы данных"
// @Router /api/users/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := request.DecodeJSON(w, r, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		if errors.Is(err, request.ErrEmptyBody) {
			render.JSON(w, r, response.Error(MsgFieldsRequired))
			return
		}
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("email", req.Email))

	if err := request.Validator.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		verrs, ok := request.ValidationErrors(err)
		if !ok || request.HasTag(verrs, "required") {
			render.JSON(w, r, response.Error(MsgFieldsRequired))
			return
		}
		render.JSON(w, r, response.ValidationError(verrs))
		return
	}

	id, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrValidation):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(MsgFieldsRequired))
		case errors.Is(err, auth.ErrWeakPassword):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, auth.ErrPasswordTooLong):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(MsgPasswordLong))
		case errors.Is(err, auth.ErrDuplicateEmail):
			log.Info("email already registered")
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error(MsgDuplicateEmail))
		case errors.Is(err, auth.ErrStoreUnavailable):
			log.Error("registration failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(MsgDatabaseError))
		default:
			log.Error("registration failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(MsgInternalError))
		}
		return
	}

	log.Info("user registered", slog.Int64("user_id", id))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, Response{
		Status:  response.StatusOK,
		Message: MsgSuccess,
		ID:      id,
	})
}
