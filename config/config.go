package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Postgres
	MinIO
	HTTPServer
	App
}

type Postgres struct {
	User       string        `env:"POSTGRES_USER" env-default:"postgres"`
	Pass       string        `env:"POSTGRES_PASSWORD" env-default:"postgres"`
	Host       string        `env:"POSTGRES_HOST" env-default:"localhost"`
	Port       string        `env:"POSTGRES_PORT" env-default:"5432"`
	DB         string        `env:"POSTGRES_DB" env-default:"blogicum"`
	Timeout    time.Duration `env:"POSTGRES_TIMEOUT" env-default:"5s"`
	Migrations string        `env:"POSTGRES_MIGRATIONS" env-default:"./migrations"`
}

type MinIO struct {
	User   string `env:"MINIO_USER" env-default:"minioadmin"`
	Pass   string `env:"MINIO_PASSWORD" env-default:"minioadmin"`
	Host   string `env:"MINIO_HOST" env-default:"localhost"`
	Port   string `env:"MINIO_PORT" env-default:"9000"`
	Bucket string `env:"MINIO_BUCKET" env-default:"posts-images"`
}

type HTTPServer struct {
	BindAddress     string        `env:"BIND_ADDRESS" env-default:"localhost"`
	BindPort        string        `env:"BIND_PORT" env-default:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" env-default:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" env-default:"5s"`
}

type App struct {
	PostsPerPage  int           `env:"POSTS_PER_PAGE" env-default:"10"`
	SessionTTL    time.Duration `env:"SESSION_TTL" env-default:"24h"`
	SessionCookie string        `env:"SESSION_COOKIE" env-default:"session_id"`
	Templates     string        `env:"TEMPLATES_GLOB" env-default:"./web/templates/*.html"`
}

func New(env string) (*Config, error) {
	conf := &Config{}

	if err := godotenv.Overload(env); err != nil {
		return nil, fmt.Errorf("godotenv.Overload: %v", err)
	}

	if err := cleanenv.ReadEnv(conf); err != nil {
		return nil, fmt.Errorf("cleanenv.Readenv: %v", err)
	}

	return conf, nil
}
