package main

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/padraicbc/cc6api/config"
	"github.com/padraicbc/cc6api/db"
	"github.com/padraicbc/cc6api/handlers"
	applog "github.com/padraicbc/cc6api/logger"
	"github.com/padraicbc/cc6api/metrics"
	mw "github.com/padraicbc/cc6api/middleware"
)

//go:embed all:build/*
var embeddedFiles embed.FS

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	bdb := db.Setup(cfg)
	defer bdb.Close()

	ctx := context.Background()
	if err := db.CreateTables(ctx, bdb); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}
	seeded, err := db.SeedClubs(ctx, bdb, cfg.ClubsSeedFile)
	if err != nil {
		logger.Fatal("seed clubs failed", zap.Error(err))
	}
	if seeded > 0 {
		logger.Info("seeded clubs", zap.Int("count", seeded))
	}

	store := db.NewStore(bdb)
	if cfg.ClubsSeedFile != "" {
		watchCtx, stop := context.WithCancel(ctx)
		defer stop()
		go func() {
			if err := db.WatchClubs(watchCtx, cfg.ClubsSeedFile, store.SyncClubs); err != nil {
				logger.Error("clubs watcher stopped", zap.Error(err))
			}
		}()
	}

	reg := metrics.New()
	h := handlers.New(store, cfg, reg)

	e := echo.New()
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(reg.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"*", "Authorization"},
		AllowCredentials: true,
	}))

	handlers.Register(e, h, mw.JWT(cfg.JWTKey()), mw.AdminOnly(cfg.IsAdmin))
	e.GET("/metrics", reg.Handler)

	site, err := fs.Sub(embeddedFiles, "build")
	if err != nil {
		logger.Fatal("open embedded build fs failed", zap.Error(err))
	}
	e.GET("/*", spa(site))

	if cfg.Debug {
		logger.Info("starting server", zap.String("mode", "debug"), zap.String("addr", cfg.Port))
		if err := e.Start(cfg.Port); err != nil {
			logger.Fatal("server exited", zap.Error(err))
		}
		return
	}

	autoTLS := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(".cache"),
		HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
	}

	s := &http.Server{
		Addr:         ":443",
		Handler:      e,
		TLSConfig:    autoTLS.TLSConfig(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	if err := s.ListenAndServeTLS("", ""); err != http.ErrServerClosed {
		logger.Error("tls server exited", zap.Error(err))
		os.Exit(1)
	}
}

// spa serves the embedded frontend: files by path, index.html for every other
// route so client-side routing works. Unknown /api paths stay 404.
func spa(site fs.FS) echo.HandlerFunc {
	files := http.FileServer(http.FS(site))
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		if strings.HasPrefix(path, "/api/") {
			return echo.ErrNotFound
		}
		if strings.Contains(path, ".") {
			files.ServeHTTP(c.Response(), c.Request())
			return nil
		}

		index, err := site.Open("index.html")
		if err != nil {
			return c.NoContent(http.StatusNotFound)
		}
		defer index.Close()
		return c.Stream(http.StatusOK, echo.MIMETextHTMLCharsetUTF8, index)
	}
}
