package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"booking-users/internal/bootstrap"
	"booking-users/internal/core/config"
	"booking-users/internal/core/server"
	"booking-users/internal/transport/http/handler"
	"booking-users/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	l, cleanup := bootstrap.NewLogger(cfg)
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := bootstrap.Build(ctx, cfg, l)
	if err != nil {
		l.Fatal("bootstrap failed", zap.Error(err))
	}
	defer deps.Close()

	reg := router.NewRegistry(handler.NewUserHandler(deps.Users, deps.Export, l))
	r := router.NewAPIEngine(l, reg, deps.Options)

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := fmt.Sprintf("http://%s:%d", host4human, cfg.App.HTTP.Port)
	l.Info("user api starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("users", baseURL+"/api/v1/users"),
		zap.String("upload_dir", cfg.Upload.Dir),
	)

	if err := server.Run(ctx, srv, l, 10*time.Second); err != nil {
		l.Error("user api stopped with error", zap.Error(err))
		os.Exit(1)
	}
	l.Info("user api stopped gracefully")
}
