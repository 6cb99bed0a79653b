// Package me возвращает пользователя текущей сессии.
package me

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/book-club/internal/http/middlewarectx"
	"github.com/magabrotheeeer/book-club/internal/http/response"
	"github.com/magabrotheeeer/book-club/internal/models"
)

// Response — данные текущего пользователя.
type Response struct {
	Status string            `json:"status" example:"OK"`
	User   models.PublicUser `json:"user"`
}

// Handler отдаёт пользователя, которого положил в контекст RequireSession.
type Handler struct{}

// New создает новый экземпляр Handler.
func New() *Handler {
	return &Handler{}
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Tags Auth
// @Produce  json
// @Success 200 {object} Response
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Router /api/users/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(middlewarectx.MsgLoginRequired))
		return
	}
	render.JSON(w, r, Response{Status: response.StatusOK, User: user})
}
