// Package storage реализует хранилище данных книжного клуба на основе PostgreSQL.
// Хранит учётные записи пользователей (хранилище учётных данных) и общий список книг.
// Все ошибки оборачиваются именем операции; ошибки «не найдено» и нарушения
// уникальности переводятся в экспортируемые значения пакета.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	// ErrUserNotFound — пользователь с таким email или id не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailExists — email уже занят другим пользователем.
	ErrEmailExists = errors.New("email already exists")
	// ErrBookNotFound — книга не найдена.
	ErrBookNotFound = errors.New("book not found")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
