package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/magabrotheeeer/book-club/internal/lib/sl"
	"github.com/magabrotheeeer/book-club/internal/models"
)

var (
	// ErrLoginRequired — сессия на сервере отсутствует или истекла, нужен повторный вход.
	ErrLoginRequired = errors.New("login required")
	// ErrSuperseded — результат операции отброшен, потому что после неё началась более новая.
	ErrSuperseded = errors.New("superseded by a newer operation")
)

// State — состояние аутентификации клиента.
type State int

const (
	// StateLoading — кэш ещё не прочитан.
	StateLoading State = iota
	// StateAuthenticated — клиент считает пользователя вошедшим.
	StateAuthenticated
	// StateUnauthenticated — пользователь не вошёл.
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// AuthAPI — сетевые операции, нужные машине состояний.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (models.PublicUser, error)
	Logout(ctx context.Context) error
}

// Session — клиентская машина состояний аутентификации.
// Переходы: Loading -> {Authenticated, Unauthenticated}, далее между ними
// через Login, Logout и ответ 401 в Do.
//
// Каждая из операций Bootstrap, Login и Logout получает номер поколения.
// Результат операции, завершившейся после начала более новой, отбрасывается.
type Session struct {
	log   *slog.Logger
	api   AuthAPI
	cache Cache

	mu    sync.Mutex
	state State
	user  models.PublicUser
	gen   uint64
}

// NewSession создаёт сессию в состоянии StateLoading.
func NewSession(log *slog.Logger, api AuthAPI, cache Cache) *Session {
	return &Session{
		log:   log,
		api:   api,
		cache: cache,
		state: StateLoading,
	}
}

// State возвращает текущее состояние.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User возвращает пользователя, если клиент в состоянии StateAuthenticated.
func (s *Session) User() (models.PublicUser, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticated {
		return models.PublicUser{}, false
	}
	return s.user, true
}

func (s *Session) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

// Bootstrap читает кэш один раз при старте. Сеть не используется.
// Ошибка чтения кэша логируется и приводит к StateUnauthenticated.
func (s *Session) Bootstrap() error {
	const op = "client.Session.Bootstrap"
	log := s.log.With(slog.String("op", op))

	gen := s.begin()
	user, err := s.cache.Load()

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return ErrSuperseded
	}

	switch {
	case err == nil:
		s.state = StateAuthenticated
		s.user = user
	case errors.Is(err, ErrCacheMiss):
		s.state = StateUnauthenticated
		s.user = models.PublicUser{}
	default:
		log.Warn("failed to read auth cache", sl.Err(err))
		s.state = StateUnauthenticated
		s.user = models.PublicUser{}
	}
	return nil
}

// Login выполняет вход на сервере и при успехе переводит клиент в
// StateAuthenticated с записью пользователя в кэш. При ошибке состояние не меняется.
func (s *Session) Login(ctx context.Context, email, password string) (models.PublicUser, error) {
	const op = "client.Session.Login"
	log := s.log.With(slog.String("op", op))

	gen := s.begin()
	user, err := s.api.Login(ctx, email, password)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return models.PublicUser{}, ErrSuperseded
	}
	if err != nil {
		if s.state == StateLoading {
			s.state = StateUnauthenticated
		}
		return models.PublicUser{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Save(user); err != nil {
		log.Warn("failed to write auth cache", sl.Err(err))
	}
	s.state = StateAuthenticated
	s.user = user
	return user, nil
}

// Logout очищает локальное состояние и кэш, затем сообщает серверу.
// Клиент оказывается в StateUnauthenticated при любом исходе сетевого вызова.
// Сетевая ошибка логируется и возвращается, чтобы её можно было показать пользователю.
func (s *Session) Logout(ctx context.Context) error {
	const op = "client.Session.Logout"
	log := s.log.With(slog.String("op", op))

	s.mu.Lock()
	s.gen++
	s.state = StateUnauthenticated
	s.user = models.PublicUser{}
	if err := s.cache.Clear(); err != nil {
		log.Warn("failed to clear auth cache", sl.Err(err))
	}
	s.mu.Unlock()

	if err := s.api.Logout(ctx); err != nil {
		log.Warn("server logout failed", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Do выполняет запрос, требующий сессии. Ответ 401 переводит клиент в
// StateUnauthenticated, очищает кэш и возвращает ErrLoginRequired.
func (s *Session) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	const op = "client.Session.Do"

	err := fn(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrUnauthorized) {
		return err
	}

	s.mu.Lock()
	s.gen++
	s.state = StateUnauthenticated
	s.user = models.PublicUser{}
	if cerr := s.cache.Clear(); cerr != nil {
		s.log.Warn("failed to clear auth cache", slog.String("op", op), sl.Err(cerr))
	}
	s.mu.Unlock()

	return fmt.Errorf("%s: %w", op, ErrLoginRequired)
}

// Guard решает, что показать для view в текущем состоянии.
func (s *Session) Guard(view View) Decision {
	return Guard(s.State(), view)
}
