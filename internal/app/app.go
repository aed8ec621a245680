package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"clinichat/internal/sweeper"
	"clinichat/pkg/config"
	"clinichat/pkg/logger"
	"clinichat/pkg/models"
	"clinichat/pkg/notify"
	"clinichat/pkg/session"
	"clinichat/pkg/store"
)

// App encapsulates the server components and lifecycle.
type App struct {
	cfg       *config.Config
	source    string
	version   string
	commit    string
	buildDate string

	hub    *notify.Hub
	bridge *notify.Bridge
	sess   *session.Session

	srv *http.Server
}

// New initializes resources that do not require a running context: the
// record store, the change hub and the session. It does not start the AMQP
// bridge or the HTTP server; call Run to start those and block until
// shutdown.
func New(cfg *config.Config, source, version, commit, buildDate string) (*App, error) {
	_ = godotenv.Load(".env")

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	if err := store.Open(cfg.Storage.DBPath); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", cfg.Storage.DBPath, err)
	}

	hub := notify.NewHub()
	store.SetHub(hub)

	user := models.User{ID: cfg.User.ID, Name: cfg.User.Name, Avatar: cfg.User.Avatar}
	if user.ID == "" {
		user.ID = "me"
	}
	if user.Name == "" {
		user.Name = "You"
	}

	sess := session.New(user, cfg.PersistHistory(), cfg.Limits.MaxAttachmentSize.Int64())
	sess.RebuildDirectory()

	a := &App{
		cfg:       cfg,
		source:    source,
		version:   version,
		commit:    commit,
		buildDate: buildDate,
		hub:       hub,
		sess:      sess,
	}
	return a, nil
}

// Run starts the change-event loop, the AMQP bridge (if configured), the
// tombstone sweeper and the HTTP server, and blocks until ctx is canceled
// or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	events, unsubscribe := a.hub.Subscribe()
	defer unsubscribe()
	go func() {
		for ev := range events {
			a.sess.HandleEvent(ev)
		}
	}()

	if url := a.cfg.Notify.AMQP.URL; url != "" {
		b, err := notify.NewBridge(ctx, url, a.cfg.Notify.AMQP.Exchange, a.cfg.Notify.AMQP.Queue, a.hub)
		if err != nil {
			// degraded but functional: local change events still flow
			logger.Warn("amqp_bridge_unavailable", "error", err)
		} else {
			a.bridge = b
		}
	}

	if a.cfg.Sweep.Enabled {
		sweeper.Start(ctx, a.cfg.Sweep.Cron, a.cfg.Sweep.Period.Duration())
	}

	a.printBanner()

	errCh := a.startHTTP()

	select {
	case <-ctx.Done():
		a.shutdown()
		return nil
	case err := <-errCh:
		a.shutdown()
		return err
	}
}

// shutdown stops the HTTP server and releases the bridge and store.
func (a *App) shutdown() {
	if a.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.srv.Shutdown(ctx); err != nil {
			logger.Warn("http_shutdown_failed", "error", err)
		}
	}
	if a.bridge != nil {
		a.bridge.Close()
	}
	if err := store.Close(); err != nil {
		logger.Warn("store_close_failed", "error", err)
	}
}

// validateConfig fails fast on settings that would only surface as runtime
// errors later.
func validateConfig(cfg *config.Config) error {
	if cfg.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	cert, key := cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile
	if (cert == "") != (key == "") {
		return fmt.Errorf("server.tls requires both cert_file and key_file")
	}
	if cfg.Sweep.Enabled && cfg.Sweep.Period.Duration() <= 0 {
		return fmt.Errorf("sweep.period must be positive when sweep is enabled")
	}
	return nil
}
