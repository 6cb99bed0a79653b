// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Бэкенды хранилища сессий.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	HTTPServer              `yaml:"http_server"`
	Session                 `yaml:"session"`
	RedisConnection         `yaml:"redis_connection"`
	CORS                    `yaml:"cors"`
	RabbitMQ                `yaml:"rabbitmq"`
	Auth                    `yaml:"auth"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"localhost:5000"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// Session структура для настройки сессий и cookie
type Session struct {
	Backend        string        `yaml:"backend" env-default:"memory"`
	Secret         string        `yaml:"secret" env:"SESSION_SECRET" env-required:"true"`
	CookieName     string        `yaml:"cookie_name" env-default:"bookclub.sid"`
	CookieSecure   bool          `yaml:"cookie_secure" env-default:"false"`
	CookieSameSite string        `yaml:"cookie_same_site" env-default:"lax"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"0s"`
	SweepInterval  time.Duration `yaml:"sweep_interval" env-default:"1m"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// CORS структура со списком доверенных origin, которым разрешены запросы с cookie
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env-default:"http://localhost:3000"`
}

// RabbitMQ структура для публикации событий аутентификации; пустой URL отключает публикацию
type RabbitMQ struct {
	URL      string `yaml:"url" env:"RABBITMQ_URL"`
	Exchange string `yaml:"exchange" env-default:"auth"`
}

// Auth структура с политиками регистрации и входа
type Auth struct {
	BcryptCost            int     `yaml:"bcrypt_cost" env-default:"10"`
	UniformLoginErrors    bool    `yaml:"uniform_login_errors" env-default:"false"`
	EnforcePasswordPolicy bool    `yaml:"enforce_password_policy" env-default:"false"`
	RateLimitRPS          float64 `yaml:"rate_limit_rps" env-default:"5"`
	RateLimitBurst        int     `yaml:"rate_limit_burst" env-default:"10"`
}

// MustLoad функция для загрузки конфига по пути из переменной CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Load читает конфиг из файла и проверяет его.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: cannot read config: %w", op, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// Validate проверяет значения, которые cleanenv не может проверить сам.
func (c *Config) Validate() error {
	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	switch strings.ToLower(c.CookieSameSite) {
	case "lax", "strict", "none":
	default:
		return fmt.Errorf("unknown cookie_same_site %q", c.CookieSameSite)
	}
	if strings.EqualFold(c.CookieSameSite, "none") && !c.CookieSecure {
		return fmt.Errorf("cookie_same_site none requires cookie_secure")
	}
	if c.Session.IdleTimeout < 0 {
		return fmt.Errorf("session idle_timeout must not be negative")
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Session:\n"+
			"  Backend: %s\n"+
			"  CookieName: %s\n"+
			"  IdleTimeout: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"CORS:\n"+
			"  AllowedOrigins: %s\n"+
			"RabbitMQ enabled: %t\n",
		c.Env,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.HTTPServer.IdleTimeout,
		c.Backend,
		c.CookieName,
		c.Session.IdleTimeout,
		c.AddressRedis,
		c.DB,
		strings.Join(c.AllowedOrigins, ","),
		c.RabbitMQ.URL != "",
	)
}
