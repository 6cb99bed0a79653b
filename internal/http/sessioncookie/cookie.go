// Package sessioncookie передаёт идентификатор сессии клиенту в подписанной cookie.
//
// Значение cookie — JWT (HS256), в поле jti которого лежит идентификатор сессии.
// Срок жизни определяет хранилище сессий, поэтому exp в токене не ставится.
package sessioncookie

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/magabrotheeeer/book-club/internal/lib/jwt"
)

// ErrNoCookie — запрос не содержит cookie сессии.
var ErrNoCookie = errors.New("session cookie not found")

// Codec записывает, читает и удаляет cookie сессии.
type Codec struct {
	name     string
	secure   bool
	sameSite http.SameSite
	maker    jwt.Maker
}

// New создаёт Codec. sameSite принимает lax, strict или none.
func New(name string, secure bool, sameSite string, maker jwt.Maker) *Codec {
	return &Codec{
		name:     name,
		secure:   secure,
		sameSite: parseSameSite(sameSite),
		maker:    maker,
	}
}

// Name возвращает имя cookie.
func (c *Codec) Name() string {
	return c.name
}

// Write подписывает sessionID и устанавливает cookie.
func (c *Codec) Write(w http.ResponseWriter, sessionID string) error {
	const op = "sessioncookie.Write"
	token, err := c.maker.GenerateToken(sessionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	http.SetCookie(w, c.cookie(token, 0))
	return nil
}

// Read возвращает идентификатор сессии из cookie запроса.
// Подделанная или повреждённая cookie даёт jwt.ErrInvalidToken.
func (c *Codec) Read(r *http.Request) (string, error) {
	const op = "sessioncookie.Read"
	ck, err := r.Cookie(c.name)
	if err != nil || ck.Value == "" {
		return "", ErrNoCookie
	}
	id, err := c.maker.ParseToken(ck.Value)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// Clear удаляет cookie на стороне клиента.
func (c *Codec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1))
}

func (c *Codec) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	}
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
