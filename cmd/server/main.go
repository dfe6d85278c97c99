package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/oklog/run"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"webshop/internal/catalog"
	"webshop/internal/config"
	"webshop/internal/db"
	"webshop/internal/images"
	"webshop/internal/logging"
	"webshop/internal/store"
	"webshop/internal/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env next to the binary, or in the repo root when started from cmd/server.
	// Each file is loaded on its own so a missing one does not stop the rest.
	for _, f := range []string{".env", "../.env", "../../.env"} {
		_ = godotenv.Overload(f)
	}

	app := &cli.App{
		Name:   "webshop",
		Usage:  "web shop product administration",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the web server",
				Action: serve,
			},
			{
				Name:  "create-admin",
				Usage: "create an admin account or promote an existing one",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true, Usage: "account name"},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}, Usage: "new password"},
				},
				Action: createAdmin,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logging.New(cfg.Environment, cfg.LogLevel), nil
}

func serve(c *cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	gdb, err := db.Open(ctx, cfg, logging.Named(log, "db"))
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	defer sqlDB.Close()

	if err := db.Migrate(gdb); err != nil {
		log.Error().Err(err).Msg("migration failed")
	}
	if err := db.SeedCategories(ctx, gdb, log); err != nil {
		log.Error().Err(err).Msg("seeding categories failed")
	}
	if err := db.SeedAdmin(ctx, gdb, cfg.AdminUsername, cfg.AdminPassword, log); err != nil {
		log.Error().Err(err).Msg("seeding admin failed")
	}

	imgs := images.NewStore(cfg.WebRoot)
	if err := imgs.EnsureDefault(); err != nil {
		log.Error().Err(err).Str("root", imgs.Root()).Msg("could not write default product image")
	}

	router, err := web.NewRouter(web.Options{
		Catalog:        catalog.NewService(store.NewProducts(gdb), imgs, logging.Named(log, "catalog")),
		Users:          store.NewUsers(gdb),
		Health:         sqlDB.PingContext,
		Log:            logging.Named(log, "http"),
		SessionSecret:  cfg.SessionSecret,
		SessionName:    cfg.SessionName,
		SessionMaxAge:  cfg.SessionMaxAge,
		CookieSecure:   cfg.CookieSecure,
		WebRoot:        cfg.WebRoot,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var g run.Group
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))
	g.Add(func() error {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Environment).Msg("listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, func(error) {
		sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer scancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Warn().Err(err).Msg("server shutdown")
		}
	})

	err = g.Run()
	var sig run.SignalError
	if errors.As(err, &sig) {
		log.Info().Str("signal", sig.Signal.String()).Msg("shut down")
		return nil
	}
	return err
}

func createAdmin(c *cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	gdb, err := db.Open(c.Context, cfg, logging.Named(log, "db"))
	if err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := db.Migrate(gdb); err != nil {
		return err
	}
	u, err := db.EnsureAdmin(c.Context, gdb, c.String("username"), c.String("password"))
	if err != nil {
		return err
	}
	log.Info().Str("username", u.Username).Uint("id", u.ID).Msg("admin account ready")
	return nil
}
