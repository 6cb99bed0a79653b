package books

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/book-club/internal/models"
	"github.com/magabrotheeeer/book-club/internal/storage"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) ListBooks(ctx context.Context) ([]*models.Book, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Book), args.Error(1)
}

func (m *RepoMock) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *RepoMock) CreateBook(ctx context.Context, book models.Book) (int64, error) {
	args := m.Called(ctx, book)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) UpdateBook(ctx context.Context, book models.Book) error {
	return m.Called(ctx, book).Error(0)
}

func (m *RepoMock) DeleteBook(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func newService(repo Repository) *Service {
	return New(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var admin = models.PublicUser{ID: 1, Role: models.RoleAdmin}

func TestService_List(t *testing.T) {
	repo := new(RepoMock)
	want := []*models.Book{{ID: 1, Title: "Dune", Author: "Herbert"}}
	repo.On("ListBooks", mock.Anything).Return(want, nil)

	got, err := newService(repo).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestService_NotFoundMapping(t *testing.T) {
	notFound := fmt.Errorf("storage.GetBook: %w", storage.ErrBookNotFound)

	tests := []struct {
		name  string
		setup func(r *RepoMock)
		call  func(s *Service) error
	}{
		{
			name:  "get",
			setup: func(r *RepoMock) { r.On("GetBook", mock.Anything, int64(7)).Return(nil, notFound) },
			call: func(s *Service) error {
				_, err := s.Get(context.Background(), 7)
				return err
			},
		},
		{
			name:  "update",
			setup: func(r *RepoMock) { r.On("UpdateBook", mock.Anything, mock.Anything).Return(notFound) },
			call: func(s *Service) error {
				return s.Update(context.Background(), admin, models.Book{ID: 7, Title: "t", Author: "a"})
			},
		},
		{
			name:  "delete",
			setup: func(r *RepoMock) { r.On("DeleteBook", mock.Anything, int64(7)).Return(notFound) },
			call: func(s *Service) error {
				return s.Delete(context.Background(), admin, 7)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setup(repo)
			err := tt.call(newService(repo))
			assert.ErrorIs(t, err, ErrNotFound)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_CreateAndDelete(t *testing.T) {
	repo := new(RepoMock)
	book := models.Book{Title: "Dune", Author: "Herbert"}
	repo.On("CreateBook", mock.Anything, book).Return(int64(3), nil)
	repo.On("DeleteBook", mock.Anything, int64(3)).Return(nil)

	svc := newService(repo)
	id, err := svc.Create(context.Background(), admin, book)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	require.NoError(t, svc.Delete(context.Background(), admin, 3))
}

func TestService_StoreErrorPassesThrough(t *testing.T) {
	repo := new(RepoMock)
	dbErr := errors.New("db down")
	repo.On("ListBooks", mock.Anything).Return(nil, dbErr)

	_, err := newService(repo).List(context.Background())
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrNotFound)
}
