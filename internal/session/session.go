// Package session хранит серверные сессии: соответствие непрозрачного
// идентификатора (он уходит клиенту в cookie) публичным данным пользователя.
//
// Store реализуют MemoryStore (по умолчанию, живёт в памяти процесса)
// и RedisStore. Оба безопасны для конкурентного использования.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/book-club/internal/models"
)

// ErrNotFound — сессия не существует, уничтожена или истекла.
var ErrNotFound = errors.New("session not found")

// idBytes — количество случайных байт в идентификаторе сессии.
const idBytes = 32

// Session — доказательство аутентификации пользователя.
type Session struct {
	ID        string            `json:"id"`
	User      models.PublicUser `json:"user"`
	CreatedAt time.Time         `json:"created_at"`
	LastSeen  time.Time         `json:"last_seen"`
}

// Store описывает жизненный цикл сессии.
type Store interface {
	// Create генерирует новый идентификатор и сохраняет сессию.
	Create(ctx context.Context, user models.PublicUser) (*Session, error)
	// Get возвращает сессию или ErrNotFound. Ничего не изменяет.
	Get(ctx context.Context, id string) (*Session, error)
	// Destroy удаляет сессию. Удаление отсутствующей сессии не ошибка.
	Destroy(ctx context.Context, id string) error
	// Touch продлевает срок простоя сессии.
	Touch(ctx context.Context, id string) error
}

// NewID возвращает криптографически случайный идентификатор сессии.
func NewID() (string, error) {
	const op = "session.NewID"
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
