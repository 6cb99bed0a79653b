// Package client реализует клиентскую часть аутентификации книжного клуба:
// HTTP‑клиент API, локальный кэш пользователя, машину состояний сессии
// и проверку доступа к экранам (guard).
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/book-club/internal/models"
)

var (
	// ErrUnauthorized — сервер ответил 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden — сервер ответил 403.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound — сервер ответил 404.
	ErrNotFound = errors.New("not found")
	// ErrConflict — сервер ответил 409.
	ErrConflict = errors.New("conflict")
	// ErrBadRequest — сервер отклонил запрос как некорректный.
	ErrBadRequest = errors.New("bad request")
)

// APIError несёт код ответа и текст ошибки сервера.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server responded %d", e.StatusCode)
	}
	return e.Message
}

// Unwrap сопоставляет код ответа с сентинел‑ошибкой пакета.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusBadRequest:
		return ErrBadRequest
	}
	return nil
}

// Health — ответ /health.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// API — HTTP‑клиент сервера книжного клуба. Сессионная cookie хранится
// в CookieJar переданного http.Client.
type API struct {
	baseURL *url.URL
	http    *http.Client
}

// NewAPI создаёт клиент для сервера по адресу baseURL.
// Если httpClient == nil, используется клиент с таймаутом 10 секунд без cookie jar.
func NewAPI(baseURL string, httpClient *http.Client) (*API, error) {
	const op = "client.NewAPI"

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s: invalid server address %q", op, baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &API{baseURL: u, http: httpClient}, nil
}

// Register регистрирует пользователя и возвращает его идентификатор.
func (a *API) Register(ctx context.Context, name, email, password string) (int64, error) {
	const op = "client.API.Register"

	in := map[string]string{"name": name, "email": email, "password": password}
	var out struct {
		ID int64 `json:"id"`
	}
	if err := a.do(ctx, http.MethodPost, "/api/users/register", in, &out); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return out.ID, nil
}

// Login выполняет вход. Сервер устанавливает сессионную cookie в jar клиента.
func (a *API) Login(ctx context.Context, email, password string) (models.PublicUser, error) {
	const op = "client.API.Login"

	in := map[string]string{"email": email, "password": password}
	var out struct {
		User models.PublicUser `json:"user"`
	}
	if err := a.do(ctx, http.MethodPost, "/api/users/login", in, &out); err != nil {
		return models.PublicUser{}, fmt.Errorf("%s: %w", op, err)
	}
	return out.User, nil
}

// Logout завершает сессию на сервере.
func (a *API) Logout(ctx context.Context) error {
	const op = "client.API.Logout"

	if err := a.do(ctx, http.MethodPost, "/api/users/logout", nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Me возвращает пользователя текущей сессии.
func (a *API) Me(ctx context.Context) (models.PublicUser, error) {
	const op = "client.API.Me"

	var out struct {
		User models.PublicUser `json:"user"`
	}
	if err := a.do(ctx, http.MethodGet, "/api/users/me", nil, &out); err != nil {
		return models.PublicUser{}, fmt.Errorf("%s: %w", op, err)
	}
	return out.User, nil
}

// ListBooks возвращает список книг клуба.
func (a *API) ListBooks(ctx context.Context) ([]models.Book, error) {
	const op = "client.API.ListBooks"

	var out struct {
		Data struct {
			Books []models.Book `json:"books"`
		} `json:"data"`
	}
	if err := a.do(ctx, http.MethodGet, "/api/books", nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out.Data.Books, nil
}

// AddBook добавляет книгу и возвращает её идентификатор.
func (a *API) AddBook(ctx context.Context, title, author, description string) (int64, error) {
	const op = "client.API.AddBook"

	in := map[string]string{"title": title, "author": author, "description": description}
	var out struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	if err := a.do(ctx, http.MethodPost, "/api/books", in, &out); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return out.Data.ID, nil
}

// DeleteBook удаляет книгу. Доступно только администратору.
func (a *API) DeleteBook(ctx context.Context, id int64) error {
	const op = "client.API.DeleteBook"

	if err := a.do(ctx, http.MethodDelete, "/api/books/"+strconv.FormatInt(id, 10), nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Health запрашивает состояние и версию сервера.
func (a *API) Health(ctx context.Context) (Health, error) {
	const op = "client.API.Health"

	var out Health
	if err := a.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return Health{}, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (a *API) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL.String()+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&e)
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
