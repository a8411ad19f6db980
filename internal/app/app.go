package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/joho/godotenv"

	"careline/internal/maintenance"
	"careline/pkg/api"
	"careline/pkg/auth"
	"careline/pkg/banner"
	"careline/pkg/config"
	"careline/pkg/directory"
	"careline/pkg/logger"
	"careline/pkg/store"
)

// App encapsulates the server components and lifecycle.
type App struct {
	cfg     *config.Config
	addr    string
	dbPath  string
	sources string
	version string

	srv *http.Server
}

// New initializes resources that do not require a running context: it
// validates the config, opens the store and seeds the directory. Call Run
// to start the scheduler and HTTP server and block until shutdown.
func New(cfg *config.Config, addr, dbPath, sources, version string) (*App, error) {
	_ = godotenv.Load(".env")

	if err := validateConfig(cfg, addr, dbPath); err != nil {
		return nil, err
	}

	if err := store.Open(dbPath); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", dbPath, err)
	}
	if err := directory.Seed(cfg.Directory.Principals); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("seed directory: %w", err)
	}

	return &App{cfg: cfg, addr: addr, dbPath: dbPath, sources: sources, version: version}, nil
}

// Run starts the maintenance scheduler and the HTTP server, and blocks
// until ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	stopMaint, err := maintenance.Start(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer stopMaint()

	banner.Print(a.addr, a.dbPath, a.sources, a.version)

	errCh := a.startHTTP()

	select {
	case <-ctx.Done():
		a.stop()
		return nil
	case err := <-errCh:
		return err
	}
}

func (a *App) startHTTP() <-chan error {
	handler := api.Handler(auth.Config{
		JWTSecret: a.cfg.Auth.JWTSecret,
		RPS:       a.cfg.Auth.RPS,
		Burst:     a.cfg.Auth.Burst,
	})
	a.srv = &http.Server{Addr: a.addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_listening", "addr", a.addr)
		var err error
		if cert, key := a.cfg.Server.TLS.CertFile, a.cfg.Server.TLS.KeyFile; cert != "" && key != "" {
			err = a.srv.ListenAndServeTLS(cert, key)
		} else {
			err = a.srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

func (a *App) stop() {
	if a.srv != nil {
		_ = a.srv.Close()
	}
	if err := store.Close(); err != nil {
		logger.Error("store_close_failed", "error", err)
	}
}
