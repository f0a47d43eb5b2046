// Package bootstrap 两个二进制共用的依赖装配：日志、数据库、缓存、图片存储、用户服务。
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"booking-users/internal/core/cache"
	"booking-users/internal/core/config"
	"booking-users/internal/core/database"
	"booking-users/internal/core/logger"
	"booking-users/internal/core/server"
	"booking-users/internal/core/storage"
	"booking-users/internal/domain"
	"booking-users/internal/export"
	"booking-users/internal/repo"
	"booking-users/internal/service"
	"booking-users/internal/transport/http/handler"
	"booking-users/internal/transport/http/router"
	"booking-users/pkg/utils"
)

// NewLogger 按配置决定是否写切割文件，并把标准库 log / gin 错误输出接到 zap
func NewLogger(cfg *config.Config) (*zap.Logger, func()) {
	var (
		l       *zap.Logger
		cleanup func()
	)
	if f := cfg.Log.File; f.Path != "" {
		l, cleanup = logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate{
			Filename:   f.Path,
			MaxSizeMB:  f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAgeDays: f.MaxAgeDays,
			Compress:   f.Compress,
		})
	} else {
		l, cleanup = logger.New(cfg.Log.Level, cfg.Log.JSON)
	}
	l = l.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env))

	undo := logger.RedirectStdLog(l.Named("stdlog"), zapcore.InfoLevel)
	gin.DefaultErrorWriter = logger.ToWriter(l.Named("gin"), zapcore.ErrorLevel)
	return l, func() {
		undo()
		cleanup()
	}
}

type Deps struct {
	DB      *gorm.DB
	Cache   *cache.Cache // redis.addr 为空时为 nil
	Users   *service.UserService
	Export  handler.ExportOptions
	Options router.Options
	closers []func()
}

func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// Build 打开数据库（可选迁移）、可选 redis 分页缓存、本地图片目录，组装 UserService
func Build(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Deps, error) {
	d := &Deps{}

	gormLog, err := logger.ToStdLogger(l.Named("gorm"), zapcore.WarnLevel)
	if err != nil {
		return nil, fmt.Errorf("gorm logger: %w", err)
	}
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Writer:             gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	d.DB = db
	d.closers = append(d.closers, func() { _ = sqlDB.Close() })
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))

	gormRepo := repo.NewUserRepo(db)
	if cfg.DB.AutoMigrate {
		if err := gormRepo.Migrate(); err != nil {
			d.Close()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}

	var users domain.UserRepository = gormRepo
	if cfg.Redis.Addr != "" {
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := c.Ping(pctx); err != nil {
			// 连不上时 List 直接查库
			l.Warn("redis unavailable, list cache degraded", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()
		d.Cache = c
		d.closers = append(d.closers, func() { _ = c.Close() })
		users = repo.NewCachedUserRepo(gormRepo, c, time.Duration(cfg.Redis.PageTTLSec)*time.Second, l)
	}

	osFs := afero.NewOsFs()
	font, err := loadPDFFont(osFs, cfg.Export)
	if err != nil {
		d.Close()
		return nil, err
	}

	images := storage.NewLocalImageStore(osFs, cfg.Upload.Dir)
	if err := images.Init(); err != nil {
		d.Close()
		return nil, fmt.Errorf("upload dir %s: %w", cfg.Upload.Dir, err)
	}

	d.Users = service.NewUserService(users, utils.NewBcryptHasher(cfg.Bcrypt.Cost), images, l, service.Options{
		MaxImageBytes: cfg.Upload.MaxBytes,
	})
	d.Export = handler.ExportOptions{Title: cfg.Export.Title, PDFCompress: cfg.Export.PDFCompress, PDFFont: font}
	d.Options = router.Options{
		Server: server.Options{Mode: cfg.App.Mode, CORSOrigins: cfg.App.CORSOrigins},
		Limits: cfg.App.Limits,
		Ping:   sqlDB.PingContext,
	}
	return d, nil
}

// loadPDFFont 读取配置的 TTF；未配置时返回零值，由导出使用内置字体
func loadPDFFont(fsys afero.Fs, c config.Export) (export.PDFFont, error) {
	var f export.PDFFont
	if c.PDFFont == "" {
		return f, nil
	}
	var err error
	if f.Regular, err = afero.ReadFile(fsys, c.PDFFont); err != nil {
		return f, fmt.Errorf("export.pdfFont: %w", err)
	}
	if c.PDFBoldFont != "" {
		if f.Bold, err = afero.ReadFile(fsys, c.PDFBoldFont); err != nil {
			return f, fmt.Errorf("export.pdfBoldFont: %w", err)
		}
	}
	return f, nil
}
