// Package jwt подписывает значение сессионной cookie.
//
// Идентификатор сессии кладётся в claim jti и подписывается HS256 секретом
// из конфигурации. Срок жизни в токен не пишется: им управляет хранилище сессий.
// Подделанная или повреждённая cookie не проходит ParseToken.
package jwt

import "errors"

// ErrInvalidToken возвращается для cookie с неверной подписью или форматом.
var ErrInvalidToken = errors.New("invalid session token")

// Maker описывает интерфейс для подписи и проверки сессионной cookie.
type Maker interface {
	// GenerateToken подписывает идентификатор сессии.
	GenerateToken(sessionID string) (string, error)
	// ParseToken проверяет подпись и возвращает идентификатор сессии.
	ParseToken(tokenStr string) (string, error)
}

// MakerImpl реализует Maker с использованием секретного ключа.
type MakerImpl struct {
	secretKey []byte // Секретный ключ для подписи cookie.
	issuer    string
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа.
func NewJWTMaker(secretKey, issuer string) *MakerImpl {
	return &MakerImpl{
		secretKey: []byte(secretKey),
		issuer:    issuer,
	}
}
