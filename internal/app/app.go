// Package app assembles the report service from configuration. Both the HTTP
// server and the CLI build on it.
package app

import (
	"context"
	"errors"
	"fmt"

	"go-pos-report/internal/ai"
	"go-pos-report/internal/auth"
	"go-pos-report/internal/config"
	"go-pos-report/internal/database"
	"go-pos-report/internal/pdf"
	"go-pos-report/internal/report"
	"go-pos-report/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the wired components of one process.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	DB        *gorm.DB
	Tokens    *auth.TokenManager
	Users     *database.UserStore
	Reports   *report.Service
	Files     *storage.LocalStore // nil unless storage.backend is local
	Assistant *ai.Agent           // nil unless ai.enabled

	closers []func() error
}

// New connects to the database and builds every component cfg enables.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	tokens, err := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiration)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Logger: log, Tokens: tokens}

	db, err := database.Connect(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	a.DB = db
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}
	a.Users = database.NewUserStore(db)

	renderer, closeRenderer, err := NewRenderer(cfg.Renderer, cfg.Report, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeRenderer)

	store, files, err := NewObjectStore(ctx, cfg, tokens, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Files = files

	svcCfg, err := cfg.Report.ServiceConfig()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Reports = report.NewService(svcCfg, database.NewSaleStore(db), renderer, store, log.Named("report"))

	if cfg.AI.Enabled {
		a.Assistant = ai.NewAgent(cfg.AI.APIKey, cfg.AI.Model, a.Reports, svcCfg.Location, log.Named("ai"))
	}
	return a, nil
}

// NewRenderer builds the configured PDF backend and its cleanup function.
func NewRenderer(cfg config.RendererConfig, rep config.ReportConfig, log *zap.Logger) (report.Renderer, func() error, error) {
	opts := pdf.Options{
		Labels:         pdf.Labels{Title: rep.Title},
		CurrencySymbol: rep.CurrencySymbol,
	}

	switch cfg.Backend {
	case config.RendererChrome:
		r := pdf.NewChromeRenderer(opts, pdf.ChromeConfig{
			RemoteURL: cfg.ChromeRemoteURL,
			Timeout:   cfg.ChromeTimeout,
			NoSandbox: cfg.ChromeNoSandbox,
			Logger:    log.Named("chrome"),
		})
		return r, r.Close, nil
	case config.RendererFPDF, "":
		r, err := pdf.NewFPDFRenderer(opts, pdf.FPDFConfig{FontPath: cfg.FontPath, Compress: cfg.Compress})
		if err != nil {
			return nil, nil, fmt.Errorf("create pdf renderer: %w", err)
		}
		return r, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown renderer backend %q", cfg.Backend)
	}
}

// NewObjectStore builds the configured storage backend. The local store is
// also returned on its own so the server can serve its files.
func NewObjectStore(ctx context.Context, cfg *config.Config, signer storage.LinkSigner, log *zap.Logger) (report.ObjectStore, *storage.LocalStore, error) {
	switch cfg.Storage.Backend {
	case config.StorageS3:
		s, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:       cfg.Storage.Bucket,
			Region:       cfg.Storage.Region,
			Endpoint:     cfg.Storage.Endpoint,
			AccessKey:    cfg.Storage.AccessKey,
			SecretKey:    cfg.Storage.SecretKey,
			UsePathStyle: cfg.Storage.PathStyle,
			UseSSL:       cfg.Storage.UseSSL,
		}, log.Named("s3"))
		if err != nil {
			return nil, nil, fmt.Errorf("create s3 store: %w", err)
		}
		log.Info("report storage ready", zap.String("backend", config.StorageS3), zap.String("bucket", s.Bucket()))
		return s, nil, nil
	case config.StorageLocal:
		s, err := storage.NewLocalStore(cfg.Storage.LocalDir, cfg.App.BaseURL, signer, log.Named("files"))
		if err != nil {
			return nil, nil, fmt.Errorf("create local store: %w", err)
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// Close releases the database and the renderer.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
