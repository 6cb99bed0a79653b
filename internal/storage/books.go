package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/book-club/internal/models"
)

// ListBooks возвращает все книги, упорядоченные по ID.
func (s *Storage) ListBooks(ctx context.Context) ([]*models.Book, error) {
	const op = "storage.ListBooks"

	rows, err := s.DB.QueryContext(ctx, `SELECT id, title, author, description FROM books ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Book, 0)
	for rows.Next() {
		b := &models.Book{}
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Description); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetBook возвращает книгу по ID.
func (s *Storage) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	const op = "storage.GetBook"

	b := &models.Book{}
	err := s.DB.QueryRowContext(ctx, `SELECT id, title, author, description FROM books WHERE id = $1`, id).
		Scan(&b.ID, &b.Title, &b.Author, &b.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrBookNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

// CreateBook вставляет книгу и возвращает её ID.
func (s *Storage) CreateBook(ctx context.Context, book models.Book) (int64, error) {
	const op = "storage.CreateBook"

	var id int64
	if err := s.DB.QueryRowContext(ctx,
		`INSERT INTO books (title, author, description) VALUES ($1, $2, $3) RETURNING id`,
		book.Title, book.Author, book.Description).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdateBook обновляет книгу по ID.
func (s *Storage) UpdateBook(ctx context.Context, book models.Book) error {
	const op = "storage.UpdateBook"

	res, err := s.DB.ExecContext(ctx,
		`UPDATE books SET title = $1, author = $2, description = $3 WHERE id = $4`,
		book.Title, book.Author, book.Description, book.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return checkAffected(op, res, ErrBookNotFound)
}

// DeleteBook удаляет книгу по ID.
func (s *Storage) DeleteBook(ctx context.Context, id int64) error {
	const op = "storage.DeleteBook"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return checkAffected(op, res, ErrBookNotFound)
}

func checkAffected(op string, res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, notFound)
	}
	return nil
}
