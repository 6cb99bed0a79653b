// Package login реализует HTTP-обработчик входа пользователя.
//
// При успешной проверке email и пароля сервис создаёт сессию, а обработчик
// отдаёт её идентификатор в подписанной HttpOnly cookie вместе с публичными
// данными пользователя. В случае ошибок формируются соответствующие HTTP-ответы.
package login

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
	"github.com/magabrotheeeer/book-club/internal/models"
	"github.com/magabrotheeeer/book-club/internal/services/auth"
	"github.com/magabrotheeeer/book-club/internal/session"
)

// Сообщения ответов.
const (
	MsgSuccess            = "Login successful!"
	MsgFieldsRequired     = "Email and password are required"
	MsgUserNotFound       = "User not found. Please check your email or register."
	MsgIncorrectPassword  = "Incorrect password. Please try again."
	MsgInvalidCredentials = "Invalid email or password."
	MsgDatabaseError      = "Database error. Please try again later."
)

// Request — структура входных данных для входа.
type Request struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Response — ответ на успешный вход.
type Response struct {
	Status  string            `json:"status" example:"OK"`
	Message string            `json:"message" example:"Login successful!"`
	User    models.PublicUser `json:"user"`
}

// Service описывает интерфейс бизнес-логики входа.
type Service interface {
	Login(ctx context.Context, email, password string) (*session.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// CookieWriter выдаёт клиенту cookie сессии.
type CookieWriter interface {
	Write(w http.ResponseWriter, sessionID string) error
}

// Handler обрабатывает HTTP-запросы для входа.
type Handler struct {
	log     *slog.Logger
	service Service
	cookies CookieWriter
	// uniform — ответ не раскрывает, что именно неверно: email или пароль.
	uniform bool
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, cookies CookieWriter, uniformErrors bool) *Handler {
	return &Handler{
		log:     log,
		service: service,
		cookies: cookies,
		uniform: uniformErrors,
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Проверяет email и пароль, создаёт сессию и устанавливает cookie.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} Response "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Неверный пароль"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/users/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	if err := request.Validator.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(MsgFieldsRequired))
		return
	}

	sess, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrValidation):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(MsgFieldsRequired))
		case errors.Is(err, auth.ErrUserNotFound):
			log.Info("user not found")
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error(MsgUserNotFound))
		case errors.Is(err, auth.ErrInvalidCredentials):
			log.Info("invalid credentials")
			render.Status(r, http.StatusUnauthorized)
			if h.uniform {
				render.JSON(w, r, response.Error(MsgInvalidCredentials))
				return
			}
			render.JSON(w, r, response.Error(MsgIncorrectPassword))
		default:
			log.Error("login failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(MsgDatabaseError))
		}
		return
	}

	if err := h.cookies.Write(w, sess.ID); err != nil {
		log.Error("failed to write session cookie", sl.Err(err))
		_ = h.service.Logout(r.Context(), sess.ID)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("login success", slog.Int64("user_id", sess.User.ID))
	render.JSON(w, r, Response{
		Status:  response.StatusOK,
		Message: MsgSuccess,
		User:    sess.User,
	})
}
