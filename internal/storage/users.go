package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/book-club/internal/models"
)

// FindUserByEmail возвращает пользователя по email.
func (s *Storage) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.FindUserByEmail"

	query := `SELECT id, name, email, password_hash, role, created_at
			  FROM users
			  WHERE email = $1
			  LIMIT 1`
	u := &models.User{}
	if err := s.DB.QueryRowContext(ctx, query, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// InsertUser сохраняет нового пользователя и возвращает его ID.
// Пустая роль заменяется на models.RoleUser.
func (s *Storage) InsertUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.InsertUser"

	role := user.Role
	if role == "" {
		role = models.RoleUser
	}

	var id int64
	query := `INSERT INTO users (name, email, password_hash, role)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, string(role)).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, ErrEmailExists)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}
