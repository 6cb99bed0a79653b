// Package models содержит доменные модели книжного клуба: учётную запись
// пользователя, её публичное представление и книгу.
// Структуры используются в бизнес‑логике, при работе с хранилищем и в HTTP‑ответах.
package models

import "time"

// Role — уровень доступа пользователя.
type Role string

const (
	// RoleUser — роль, назначаемая при регистрации.
	RoleUser Role = "user"
	// RoleAdmin — администратор, может удалять книги.
	RoleAdmin Role = "admin"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           int64     // Идентификатор, назначается хранилищем
	Name         string    // Отображаемое имя
	Email        string    // Электронная почта (уникальная), ключ для входа
	PasswordHash string    // bcrypt-хэш пароля, наружу не отдаётся
	Role         Role      // Роль пользователя, admin или user
	CreatedAt    time.Time // Дата регистрации
}

// PublicUser — подмножество полей пользователя, которое можно вернуть клиенту
// и хранить в сессии. Хэш пароля сюда не попадает.
type PublicUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Public возвращает публичное представление пользователя.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}
