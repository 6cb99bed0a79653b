package bookclub

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/book-club/internal/http/middlewarectx"
	"github.com/magabrotheeeer/book-club/internal/http/sessioncookie"
	"github.com/magabrotheeeer/book-club/internal/lib/jwt"
	"github.com/magabrotheeeer/book-club/internal/lib/metrics"
	"github.com/magabrotheeeer/book-club/internal/lib/password"
	"github.com/magabrotheeeer/book-club/internal/models"
	authservice "github.com/magabrotheeeer/book-club/internal/services/auth"
	bookservice "github.com/magabrotheeeer/book-club/internal/services/books"
	"github.com/magabrotheeeer/book-club/internal/session"
	"github.com/magabrotheeeer/book-club/internal/storage"
)

// memoryRepo — хранилище пользователей и книг в памяти.
type memoryRepo struct {
	mu     sync.Mutex
	users  map[string]models.User
	books  map[int64]models.Book
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: map[string]models.User{}, books: map[int64]models.Book{}}
}

func (r *memoryRepo) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return &u, nil
}

func (r *memoryRepo) InsertUser(_ context.Context, user models.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return 0, storage.ErrEmailExists
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.Email] = user
	return user.ID, nil
}

func (r *memoryRepo) promote(email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[email]
	u.Role = models.RoleAdmin
	r.users[email] = u
}

func (r *memoryRepo) ListBooks(context.Context) ([]*models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]*models.Book, 0, len(r.books))
	for _, b := range r.books {
		b := b
		res = append(res, &b)
	}
	return res, nil
}

func (r *memoryRepo) GetBook(_ context.Context, id int64) (*models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, storage.ErrBookNotFound
	}
	return &b, nil
}

func (r *memoryRepo) CreateBook(_ context.Context, book models.Book) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	book.ID = r.nextID
	r.books[book.ID] = book
	return book.ID, nil
}

func (r *memoryRepo) UpdateBook(_ context.Context, book models.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[book.ID]; !ok {
		return storage.ErrBookNotFound
	}
	r.books[book.ID] = book
	return nil
}

func (r *memoryRepo) DeleteBook(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return storage.ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}

type testEnv struct {
	server *httptest.Server
	repo   *memoryRepo
	store  *session.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newMemoryRepo()
	store := session.NewMemoryStore()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Logger:         log,
		Auth:           authservice.New(log, repo, password.NewHasher(4), store, authservice.WithMetrics(m)),
		Books:          bookservice.New(repo, log),
		Sessions:       store,
		Cookies:        sessioncookie.New("bookclub.sid", false, "lax", jwt.NewJWTMaker("test-secret", "bookclub")),
		Metrics:        m,
		Gatherer:       reg,
		Limiter:        middlewarectx.NewIPRateLimiter(1000, 1000),
		AllowedOrigins: []string{"http://localhost:3000"},
		Version:        "v1.0.0",
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testEnv{server: srv, repo: repo, store: store}
}

func (e *testEnv) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func do(t *testing.T, c *http.Client, method, url string, body any) (int, map[string]any) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	base := env.server.URL

	creds := map[string]string{"name": "Alice", "email": "alice@example.com", "password": "abc123"}

	code, body := do(t, c, http.MethodPost, base+"/api/users/register", creds)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Registration successful! You can now log in.", body["message"])
	assert.NotZero(t, body["id"])

	// регистрация не создаёт сессию
	code, _ = do(t, c, http.MethodGet, base+"/api/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = do(t, c, http.MethodPost, base+"/api/users/register", creds)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Email already registered. Please use a different email.", body["error"])

	code, body = do(t, c, http.MethodPost, base+"/api/users/login",
		map[string]string{"email": "alice@example.com", "password": "wrong1"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Incorrect password. Please try again.", body["error"])
	assert.Equal(t, 0, env.store.Len())

	code, body = do(t, c, http.MethodPost, base+"/api/users/login",
		map[string]string{"email": "nobody@example.com", "password": "abc123"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found. Please check your email or register.", body["error"])

	code, body = do(t, c, http.MethodPost, base+"/api/users/login",
		map[string]string{"email": "alice@example.com", "password": "abc123"})
	require.Equal(t, http.StatusOK, code)
	user := body["user"].(map[string]any)
	assert.Equal(t, "user", user["role"])
	assert.NotContains(t, user, "password_hash")

	code, body = do(t, c, http.MethodGet, base+"/api/users/me", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alice@example.com", body["user"].(map[string]any)["email"])

	code, body = do(t, c, http.MethodPost, base+"/api/books", map[string]string{"title": "Dune", "author": "Frank Herbert"})
	require.Equal(t, http.StatusCreated, code)
	bookID := body["data"].(map[string]any)["id"].(float64)

	code, _ = do(t, c, http.MethodGet, base+"/api/books", nil)
	assert.Equal(t, http.StatusOK, code)

	// обычный пользователь не может удалять книги
	code, body = do(t, c, http.MethodDelete, base+"/api/books/"+jsonInt(bookID), nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Admins only", body["error"])

	code, body = do(t, c, http.MethodPost, base+"/api/users/logout", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Logged out", body["message"])
	assert.Equal(t, 0, env.store.Len())

	code, body = do(t, c, http.MethodGet, base+"/api/books", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "You must be logged in", body["error"])

	// выход без сессии тоже успешен
	code, _ = do(t, c, http.MethodPost, base+"/api/users/logout", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAdminCanDelete(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	base := env.server.URL

	code, _ := do(t, c, http.MethodPost, base+"/api/users/register",
		map[string]string{"name": "Root", "email": "root@example.com", "password": "root1"})
	require.Equal(t, http.StatusCreated, code)
	env.repo.promote("root@example.com")

	code, _ = do(t, c, http.MethodPost, base+"/api/users/login",
		map[string]string{"email": "root@example.com", "password": "root1"})
	require.Equal(t, http.StatusOK, code)

	code, body := do(t, c, http.MethodPost, base+"/api/books", map[string]string{"title": "Emma", "author": "Austen"})
	require.Equal(t, http.StatusCreated, code)
	id := jsonInt(body["data"].(map[string]any)["id"].(float64))

	code, _ = do(t, c, http.MethodDelete, base+"/api/books/"+id, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, c, http.MethodGet, base+"/api/books/"+id, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestConcurrentSessions(t *testing.T) {
	env := newTestEnv(t)
	base := env.server.URL
	phone, laptop := env.client(t), env.client(t)

	code, _ := do(t, phone, http.MethodPost, base+"/api/users/register",
		map[string]string{"name": "Bob", "email": "bob@example.com", "password": "bob12"})
	require.Equal(t, http.StatusCreated, code)

	for _, c := range []*http.Client{phone, laptop} {
		code, _ = do(t, c, http.MethodPost, base+"/api/users/login",
			map[string]string{"email": "bob@example.com", "password": "bob12"})
		require.Equal(t, http.StatusOK, code)
	}
	assert.Equal(t, 2, env.store.Len())

	code, _ = do(t, phone, http.MethodPost, base+"/api/users/logout", nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = do(t, laptop, http.MethodGet, base+"/api/users/me", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, phone, http.MethodGet, base+"/api/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestMiscRoutes(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	base := env.server.URL

	code, body := do(t, c, http.MethodGet, base+"/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "API route not found", body["error"])

	code, body = do(t, c, http.MethodGet, base+"/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "v1.0.0", body["version"])

	code, _ = do(t, c, http.MethodGet, base+"/metrics", nil)
	assert.Equal(t, http.StatusOK, code)

	code, body = do(t, c, http.MethodPost, base+"/api/users/register", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "All fields are required", body["error"])
}

func TestRegisterPasswordByteLimit(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	base := env.server.URL

	// 40 символов проходят max=72 валидатора, но занимают 80 байт
	code, body := do(t, c, http.MethodPost, base+"/api/users/register", map[string]string{
		"name": "Ivan", "email": "ivan@example.com", "password": strings.Repeat("ж", 40),
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Password must be at most 72 bytes", body["error"])

	code, _ = do(t, c, http.MethodPost, base+"/api/users/register", map[string]string{
		"name": "Ivan", "email": "ivan@example.com", "password": strings.Repeat("ж", 36),
	})
	assert.Equal(t, http.StatusCreated, code)
}

func jsonInt(f float64) string {
	raw, _ := json.Marshal(int64(f))
	return string(raw)
}
