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
	"booking-users/internal/core/auth"
	"booking-users/internal/core/config"
	"booking-users/internal/core/server"
	"booking-users/internal/transport/http/handler"
	"booking-users/internal/transport/http/router"
)

const usage = `usage: admin [serve]            start the admin API
       admin token [flags]      print an admin bearer token`

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}
	switch cmd {
	case "serve":
		serve(cfg)
	case "token":
		if err := token(cfg, args, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
}

func jwterFrom(cfg *config.Config) (*auth.JWTer, error) {
	return auth.NewJWTer(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.AccessTokenTTLMin)*time.Minute)
}

func serve(cfg *config.Config) {
	l, cleanup := bootstrap.NewLogger(cfg)
	defer cleanup()

	jwter, err := jwterFrom(cfg)
	if err != nil {
		l.Fatal("jwt config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := bootstrap.Build(ctx, cfg, l)
	if err != nil {
		l.Fatal("bootstrap failed", zap.Error(err))
	}
	defer deps.Close()

	reg := router.NewRegistry(handler.NewAdminHandler(deps.Users, deps.Export, l))
	r := router.NewAdminEngine(l, reg, jwter, deps.Options)

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 60*time.Second, 60*time.Second)
	l.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("admin_v1", fmt.Sprintf("http://%s/admin/v1", addr)),
	)

	if err := server.Run(ctx, srv, l, 10*time.Second); err != nil {
		l.Error("admin api stopped with error", zap.Error(err))
		os.Exit(1)
	}
	l.Info("admin api stopped gracefully")
}
