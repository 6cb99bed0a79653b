package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims — содержимое подписанной cookie.
type SessionClaims struct {
	jwt.RegisteredClaims // ID (jti) — идентификатор сессии
}

// GenerateToken создает подписанный токен с идентификатором сессии в jti.
func (j *MakerImpl) GenerateToken(sessionID string) (string, error) {
	const op = "jwt.GenerateToken"
	if sessionID == "" {
		return "", fmt.Errorf("%s: empty session id", op)
	}
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       sessionID,
			Issuer:   j.issuer,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken парсит токен, проверяет подпись и алгоритм,
// возвращает идентификатор сессии.
func (j *MakerImpl) ParseToken(tokenStr string) (string, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(_ *jwt.Token) (any, error) {
		return j.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	if j.issuer != "" && claims.Issuer != j.issuer {
		return "", fmt.Errorf("%s: %w: unexpected issuer", op, ErrInvalidToken)
	}
	return claims.ID, nil
}
