package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/magabrotheeeer/book-club/internal/models"
)

// ErrCacheMiss — в кэше нет пользователя.
var ErrCacheMiss = errors.New("cache miss")

// Cache — локальная копия публичных данных пользователя.
// Сама по себе доступа не даёт: сервер проверяет cookie на каждом запросе.
type Cache interface {
	Load() (models.PublicUser, error)
	Save(user models.PublicUser) error
	Clear() error
}

// FileCache хранит пользователя в JSON‑файле.
type FileCache struct {
	path string
}

// NewFileCache создаёт кэш в файле path. Каталог создаётся при первой записи.
func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

// Load читает пользователя из файла. Отсутствующий файл даёт ErrCacheMiss.
func (c *FileCache) Load() (models.PublicUser, error) {
	const op = "client.FileCache.Load"

	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.PublicUser{}, ErrCacheMiss
		}
		return models.PublicUser{}, fmt.Errorf("%s: %w", op, err)
	}

	var user models.PublicUser
	if err := json.Unmarshal(data, &user); err != nil {
		return models.PublicUser{}, fmt.Errorf("%s: %w", op, err)
	}
	if user.ID == 0 {
		return models.PublicUser{}, ErrCacheMiss
	}
	return user, nil
}

// Save записывает пользователя атомарно через временный файл.
func (c *FileCache) Save(user models.PublicUser) error {
	const op = "client.FileCache.Save"

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := writeFileAtomic(c.path, data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Clear удаляет файл кэша. Отсутствие файла ошибкой не считается.
func (c *FileCache) Clear() error {
	const op = "client.FileCache.Clear"

	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MemoryCache — кэш в памяти процесса, используется в тестах.
type MemoryCache struct {
	mu   sync.Mutex
	user *models.PublicUser
}

// Load возвращает сохранённого пользователя или ErrCacheMiss.
func (c *MemoryCache) Load() (models.PublicUser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return models.PublicUser{}, ErrCacheMiss
	}
	return *c.user, nil
}

// Save запоминает пользователя.
func (c *MemoryCache) Save(user models.PublicUser) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = &user
	return nil
}

// Clear забывает пользователя.
func (c *MemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
