package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/intentionalhq/notifier/modules/admin"
	"github.com/intentionalhq/notifier/pkg/config"
	"github.com/intentionalhq/notifier/pkg/email"
	"github.com/intentionalhq/notifier/pkg/logger"
	"github.com/intentionalhq/notifier/pkg/notification"
	"github.com/intentionalhq/notifier/pkg/pg"
	"github.com/intentionalhq/notifier/pkg/queue"
	"github.com/intentionalhq/notifier/pkg/queue/pgstore"
)

type appConfig struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	FrontendURL     string        `env:"FRONTEND_URL" envDefault:"https://app.intentional.fit"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var logCfg logger.Config
	config.MustLoad(&logCfg)

	log := logger.New(
		logger.FromConfig(logCfg),
		logger.WithAttr(slog.String("service", "notifier")),
	)
	logger.SetAsDefault(log)

	if err := run(ctx, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("notifier exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("notifier stopped")
}

func run(ctx context.Context, log *slog.Logger) error {
	var (
		appCfg   appConfig
		pgCfg    pg.Config
		emailCfg email.Config
		queueCfg queue.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&emailCfg)
	config.MustLoad(&queueCfg)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	store, err := pgstore.New(pool)
	if err != nil {
		return err
	}

	sender := newSender(emailCfg, log)

	deliverer, err := notification.NewEmailDeliverer(sender,
		notification.WithAppURL(appCfg.FrontendURL),
		notification.WithLogger(log),
	)
	if err != nil {
		return err
	}

	dispatcher, err := queue.NewDispatcher(store, deliverer,
		queue.FromConfig(queueCfg),
		queue.WithDispatcherLogger(log),
	)
	if err != nil {
		return err
	}

	trigger, err := queue.NewTrigger(dispatcher,
		queue.WithInterval(queueCfg.CycleInterval),
		queue.WithTriggerLogger(log),
	)
	if err != nil {
		return err
	}

	adminSvc, err := admin.NewService(store, deliverer, log)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", healthHandler(pg.Healthcheck(pool)))
	r.Mount("/admin/notifications", adminSvc.Router())

	server := &http.Server{
		Addr:              appCfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(trigger.Run(ctx))

	g.Go(func() error {
		log.Info("http server listening", slog.String("addr", appCfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newSender picks the email transport: Postmark when tokens are configured,
// the on-disk dev sender otherwise.
func newSender(cfg email.Config, log *slog.Logger) email.EmailSender {
	if cfg.PostmarkServerToken != "" && cfg.PostmarkAccountToken != "" {
		log.Info("using postmark email transport")
		return email.MustNewPostmarkClient(cfg)
	}

	log.Warn("postmark tokens not configured, using dev email transport",
		slog.String("dir", cfg.DevOutputDir))
	return email.NewDevSender(cfg.DevOutputDir)
}

func healthHandler(check func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := check(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
