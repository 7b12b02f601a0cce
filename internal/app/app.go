package app

import (
	"context"
	"fmt"

	"github.com/gfdmit/blogicum/config"
	v1 "github.com/gfdmit/blogicum/internal/handlers/http/v1"
	"github.com/gfdmit/blogicum/internal/httpserver"
	"github.com/gfdmit/blogicum/internal/repository/minio"
	"github.com/gfdmit/blogicum/internal/repository/postgres"
	"github.com/gfdmit/blogicum/internal/service"
)

func Run(conf config.Config) error {
	ctx := context.Background()

	repo, err := postgres.New(conf.Postgres)
	if err != nil {
		return fmt.Errorf("error when setting up repository: %v", err)
	}

	media, err := minio.New(conf.MinIO)
	if err != nil {
		return fmt.Errorf("error when setting up media store: %v", err)
	}

	svc := service.New(repo, media, conf.App)

	handler, err := v1.New(svc, conf.App)
	if err != nil {
		return fmt.Errorf("error when setting up handler: %v", err)
	}

	server := httpserver.New(conf.HTTPServer, handler)

	return server.Run(ctx)
}
