package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/book-club/internal/migrations"
)

// testDataFactory содержит методы для создания тестовых данных
type testDataFactory struct {
	storage *Storage
}

// createUser создает тестового пользователя напрямую, минуя InsertUser
func (f *testDataFactory) createUser(t *testing.T, name, email, passwordHash, role string) int64 {
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		name, email, passwordHash, role).Scan(&id)
	require.NoError(t, err)
	return id
}

// createBook создает тестовую книгу
func (f *testDataFactory) createBook(t *testing.T, title, author string) int64 {
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO books (title, author) VALUES ($1, $2) RETURNING id`,
		title, author).Scan(&id)
	require.NoError(t, err)
	return id
}

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "Failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	cleanup := func() {
		_ = storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}
