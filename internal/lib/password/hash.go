// Package password реализует функции для безопасного хеширования и проверки паролей.
//
// Hasher создаёт bcrypt-хеш с солью, сгенерированной при каждом вызове,
// и проверяет введённый пароль по сохранённому хешу.
// Policy описывает необязательные требования к сложности пароля.
package password

import (
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// MaxBytes — предел bcrypt на длину пароля в байтах, не в символах.
const MaxBytes = 72

var (
	// ErrWeakPassword возвращается, если пароль не удовлетворяет политике.
	ErrWeakPassword = errors.New("password must be 3-8 characters with at least one letter and one number")
	// ErrTooLong возвращается для паролей длиннее MaxBytes байт.
	ErrTooLong = errors.New("password must be at most 72 bytes")
)

// Hasher хеширует пароли bcrypt с заданной стоимостью.
// Нулевое значение использует bcrypt.DefaultCost.
type Hasher struct {
	Cost int
}

// NewHasher создаёт Hasher. Стоимость вне допустимого диапазона bcrypt
// заменяется на bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{Cost: cost}
}

// Hash принимает пароль пользователя и возвращает его bcrypt‑хэш.
// Соль генерируется заново и хранится внутри хэша.
func (h *Hasher) Hash(plain string) (string, error) {
	const op = "password.Hash"
	if len(plain) > MaxBytes {
		return "", fmt.Errorf("%s: %w", op, ErrTooLong)
	}
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// Verify сообщает, соответствует ли пароль хэшу.
func (h *Hasher) Verify(plain, hash string) bool {
	return CompareHash(hash, plain) == nil
}

// CompareHash сравнивает bcrypt‑хэш с введённым паролем.
//
// Возвращает nil, если пароль соответствует хэшу, иначе — ошибку.
func CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

var (
	alnumRe  = regexp.MustCompile(`^[A-Za-z\d]{3,8}$`)
	letterRe = regexp.MustCompile(`[A-Za-z]`)
	digitRe  = regexp.MustCompile(`\d`)
)

// CheckPolicy проверяет пароль по правилу формы регистрации:
// 3–8 латинских букв и цифр, минимум одна буква и одна цифра.
func CheckPolicy(plain string) error {
	if !alnumRe.MatchString(plain) || !letterRe.MatchString(plain) || !digitRe.MatchString(plain) {
		return ErrWeakPassword
	}
	return nil
}
