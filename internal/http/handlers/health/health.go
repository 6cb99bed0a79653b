// Package health отдаёт состояние сервиса и версию API.
package health

import (
	"net/http"

	"github.com/go-chi/render"
)

// Response — ответ проверки здоровья.
type Response struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version" example:"v1.0.0"`
}

// Handler отвечает на /health.
type Handler struct {
	version string
}

// New создает Handler, сообщающий версию version.
func New(version string) *Handler {
	return &Handler{version: version}
}

// ServeHTTP godoc
// @Summary Проверка здоровья
// @Tags Health
// @Produce  json
// @Success 200 {object} Response
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, Response{Status: "ok", Version: h.version})
}
