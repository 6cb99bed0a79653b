// Package auth содержит бизнес-логику регистрации, входа и выхода пользователей.
//
// Сервис проверяет учётные данные по хранилищу пользователей, хэширует пароли
// и создаёт серверные сессии. Публикация событий и метрики необязательны.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/book-club/internal/lib/metrics"
	"github.com/magabrotheeeer/book-club/internal/lib/password"
	"github.com/magabrotheeeer/book-club/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/book-club/internal/lib/sl"
	"github.com/magabrotheeeer/book-club/internal/models"
	"github.com/magabrotheeeer/book-club/internal/session"
	"github.com/magabrotheeeer/book-club/internal/storage"
)

// Названия операций для метрик.
const (
	OperationRegister = "register"
	OperationLogin    = "login"
)

// UserRepository описывает контракт хранилища учётных данных.
type UserRepository interface {
	// FindUserByEmail возвращает пользователя или storage.ErrUserNotFound.
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	// InsertUser сохраняет пользователя и возвращает его ID.
	// При занятом email возвращает storage.ErrEmailExists.
	InsertUser(ctx context.Context, user models.User) (int64, error)
}

// PasswordHasher хэширует и проверяет пароли.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// EventPublisher отправляет события во внешнюю шину.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// Recorder собирает метрики попыток входа и регистрации.
type Recorder interface {
	ObserveAuth(op, outcome string)
	ObserveSession(event string)
}

// UserRegistered — событие успешной регистрации.
type UserRegistered struct {
	UserID int64     `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	At     time.Time `json:"at"`
}

// UserLoggedIn — событие успешного входа.
type UserLoggedIn struct {
	UserID int64     `json:"user_id"`
	Email  string    `json:"email"`
	At     time.Time `json:"at"`
}

// Service реализует Register, Login и Logout.
type Service struct {
	log      *slog.Logger
	users    UserRepository
	hasher   PasswordHasher
	sessions session.Store
	events   EventPublisher
	metrics  Recorder

	uniformLoginErrors    bool
	enforcePasswordPolicy bool
}

// Option настраивает Service.
type Option func(*Service)

// WithEvents включает публикацию событий.
func WithEvents(p EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

// WithMetrics включает запись метрик.
func WithMetrics(r Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

// WithUniformLoginErrors скрывает, существует ли email: неизвестный пользователь
// получает ту же ошибку, что и неверный пароль.
func WithUniformLoginErrors(enabled bool) Option {
	return func(s *Service) { s.uniformLoginErrors = enabled }
}

// WithPasswordPolicy включает серверную проверку сложности пароля при регистрации.
func WithPasswordPolicy(enabled bool) Option {
	return func(s *Service) { s.enforcePasswordPolicy = enabled }
}

// New создаёт сервис аутентификации.
func New(log *slog.Logger, users UserRepository, hasher PasswordHasher, sessions session.Store, opts ...Option) *Service {
	s := &Service{
		log:      log,
		users:    users,
		hasher:   hasher,
		sessions: sessions,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register создаёт пользователя с ролью "user" и возвращает его ID.
// Сессия при регистрации не создаётся.
func (s *Service) Register(ctx context.Context, name, email, plain string) (int64, error) {
	const op = "auth.Register"

	if name == "" || email == "" || plain == "" {
		s.observe(OperationRegister, metrics.OutcomeInvalidInput)
		return 0, ErrValidation
	}
	if len(plain) > password.MaxBytes {
		s.observe(OperationRegister, metrics.OutcomeInvalidInput)
		return 0, ErrPasswordTooLong
	}
	if s.enforcePasswordPolicy {
		if err := password.CheckPolicy(plain); err != nil {
			s.observe(OperationRegister, metrics.OutcomeInvalidInput)
			return 0, ErrWeakPassword
		}
	}

	_, err := s.users.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		s.observe(OperationRegister, metrics.OutcomeDuplicate)
		return 0, ErrDuplicateEmail
	case !errors.Is(err, storage.ErrUserNotFound):
		s.observe(OperationRegister, metrics.OutcomeStoreUnavailable)
		return 0, fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}

	hashed, err := s.hasher.Hash(plain)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			s.observe(OperationRegister, metrics.OutcomeInvalidInput)
			return 0, ErrPasswordTooLong
		}
		s.observe(OperationRegister, metrics.OutcomeError)
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.users.InsertUser(ctx, models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         models.RoleUser,
	})
	if err != nil {
		if errors.Is(err, storage.ErrEmailExists) {
			s.observe(OperationRegister, metrics.OutcomeDuplicate)
			return 0, ErrDuplicateEmail
		}
		s.observe(OperationRegister, metrics.OutcomeStoreUnavailable)
		return 0, fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}

	s.observe(OperationRegister, metrics.OutcomeSuccess)
	s.publish(ctx, rabbitmq.RoutingKeyUserRegistered, UserRegistered{
		UserID: id,
		Name:   name,
		Email:  email,
		At:     time.Now().UTC(),
	})
	return id, nil
}

// Login проверяет учётные данные и создаёт новую сессию.
// Уже существующие сессии пользователя остаются действительными.
func (s *Service) Login(ctx context.Context, email, plain string) (*session.Session, error) {
	const op = "auth.Login"

	if email == "" || plain == "" {
		s.observe(OperationLogin, metrics.OutcomeInvalidInput)
		return nil, ErrValidation
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			s.observe(OperationLogin, metrics.OutcomeUserNotFound)
			if s.uniformLoginErrors {
				return nil, ErrInvalidCredentials
			}
			return nil, ErrUserNotFound
		}
		s.observe(OperationLogin, metrics.OutcomeStoreUnavailable)
		return nil, fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}

	if !s.hasher.Verify(plain, user.PasswordHash) {
		s.observe(OperationLogin, metrics.OutcomeInvalidPassword)
		return nil, ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, user.Public())
	if err != nil {
		s.observe(OperationLogin, metrics.OutcomeStoreUnavailable)
		return nil, fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}

	s.observe(OperationLogin, metrics.OutcomeSuccess)
	if s.metrics != nil {
		s.metrics.ObserveSession("created")
	}
	s.publish(ctx, rabbitmq.RoutingKeyUserLoggedIn, UserLoggedIn{
		UserID: user.ID,
		Email:  user.Email,
		At:     time.Now().UTC(),
	})
	return sess, nil
}

// Logout уничтожает сессию. Операция идемпотентна и не возвращает ошибок
// хранилища: клиент в любом случае считается вышедшим.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	const op = "auth.Logout"
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		s.log.Error("failed to destroy session", slog.String("op", op), sl.Err(err))
		return nil
	}
	if s.metrics != nil {
		s.metrics.ObserveSession("destroyed")
	}
	return nil
}

func (s *Service) observe(op, outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveAuth(op, outcome)
	}
}

func (s *Service) publish(ctx context.Context, key string, event any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, key, event); err != nil {
		s.log.Warn("failed to publish event", slog.String("routing_key", key), sl.Err(err))
	}
}
