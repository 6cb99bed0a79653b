// Package books содержит бизнес-логику работы с общим списком книг клуба.
package books

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/book-club/internal/models"
	"github.com/magabrotheeeer/book-club/internal/storage"
)

// ErrNotFound — книга с таким ID не существует.
var ErrNotFound = errors.New("book not found")

// Repository определяет методы для работы с книгами в хранилище.
type Repository interface {
	ListBooks(ctx context.Context) ([]*models.Book, error)
	GetBook(ctx context.Context, id int64) (*models.Book, error)
	CreateBook(ctx context.Context, book models.Book) (int64, error)
	UpdateBook(ctx context.Context, book models.Book) error
	DeleteBook(ctx context.Context, id int64) error
}

// Service реализует операции над книгами.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создаёт сервис книг.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List возвращает все книги.
func (s *Service) List(ctx context.Context) ([]*models.Book, error) {
	const op = "books.List"
	res, err := s.repo.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// Get возвращает книгу по ID.
func (s *Service) Get(ctx context.Context, id int64) (*models.Book, error) {
	const op = "books.Get"
	b, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return b, nil
}

// Create добавляет книгу от имени пользователя user.
func (s *Service) Create(ctx context.Context, user models.PublicUser, book models.Book) (int64, error) {
	const op = "books.Create"
	id, err := s.repo.CreateBook(ctx, book)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("book created", slog.Int64("book_id", id), slog.Int64("user_id", user.ID))
	return id, nil
}

// Update заменяет поля книги.
func (s *Service) Update(ctx context.Context, user models.PublicUser, book models.Book) error {
	const op = "books.Update"
	if err := s.repo.UpdateBook(ctx, book); err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}
	s.log.Info("book updated", slog.Int64("book_id", book.ID), slog.Int64("user_id", user.ID))
	return nil
}

// Delete удаляет книгу. Проверка роли выполняется на уровне маршрутов.
func (s *Service) Delete(ctx context.Context, user models.PublicUser, id int64) error {
	const op = "books.Delete"
	if err := s.repo.DeleteBook(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}
	s.log.Info("book deleted", slog.Int64("book_id", id), slog.Int64("user_id", user.ID))
	return nil
}

func mapErr(err error) error {
	if errors.Is(err, storage.ErrBookNotFound) {
		return ErrNotFound
	}
	return err
}
