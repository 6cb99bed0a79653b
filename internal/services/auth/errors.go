package auth

import (
	"errors"

	"github.com/magabrotheeeer/book-club/internal/lib/password"
)

// Ошибки сервиса аутентификации. HTTP-слой переводит их в коды ответа.
var (
	// ErrValidation — не заполнены обязательные поля.
	ErrValidation = errors.New("all fields are required")
	// ErrWeakPassword — пароль не прошёл политику сложности.
	ErrWeakPassword = password.ErrWeakPassword
	// ErrPasswordTooLong — пароль длиннее предела bcrypt в байтах.
	ErrPasswordTooLong = password.ErrTooLong
	// ErrDuplicateEmail — email уже зарегистрирован.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrUserNotFound — пользователь с таким email не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials — неверный пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrStoreUnavailable — отказ хранилища пользователей или сессий.
	ErrStoreUnavailable = errors.New("store unavailable")
)
