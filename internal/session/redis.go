package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/book-club/internal/config"
	"github.com/magabrotheeeer/book-club/internal/models"
)

const redisKeyPrefix = "bookclub:session:"

// RedisStore хранит сессии в Redis как JSON. Срок простоя реализован через EXPIRE;
// при idleTimeout == 0 ключи живут до явного Destroy.
type RedisStore struct {
	client      *redis.Client
	idleTimeout time.Duration
}

// NewRedisClient подключается к Redis и проверяет соединение.
func NewRedisClient(ctx context.Context, cfg config.RedisConnection) (*redis.Client, error) {
	const op = "session.NewRedisClient"
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return client, nil
}

// NewRedisStore создаёт хранилище поверх готового клиента.
func NewRedisStore(client *redis.Client, idleTimeout time.Duration) *RedisStore {
	return &RedisStore{client: client, idleTimeout: idleTimeout}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

// Create сохраняет новую сессию.
func (s *RedisStore) Create(ctx context.Context, user models.PublicUser) (*Session, error) {
	const op = "session.RedisStore.Create"
	id, err := NewID()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	now := time.Now().UTC()
	sess := &Session{ID: id, User: user, CreatedAt: now, LastSeen: now}

	raw, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	// SETNX исключает перезапись при маловероятном совпадении идентификаторов.
	ok, err := s.client.SetNX(ctx, redisKey(id), raw, s.idleTimeout).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: session id collision", op)
	}
	return sess, nil
}

// Get читает сессию.
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	const op = "session.RedisStore.Get"
	raw, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sess, nil
}

// Destroy удаляет ключ сессии.
func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	const op = "session.RedisStore.Destroy"
	if err := s.client.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Touch продлевает TTL ключа. Без idleTimeout только проверяет существование.
func (s *RedisStore) Touch(ctx context.Context, id string) error {
	const op = "session.RedisStore.Touch"
	var (
		ok  bool
		err error
	)
	if s.idleTimeout > 0 {
		ok, err = s.client.Expire(ctx, redisKey(id), s.idleTimeout).Result()
	} else {
		var n int64
		n, err = s.client.Exists(ctx, redisKey(id)).Result()
		ok = n > 0
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
