package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iliyamo/tutor-accounts/internal/config"
	"github.com/iliyamo/tutor-accounts/internal/database"
	"github.com/iliyamo/tutor-accounts/internal/handler"
	"github.com/iliyamo/tutor-accounts/internal/logger"
	"github.com/iliyamo/tutor-accounts/internal/oauth"
	"github.com/iliyamo/tutor-accounts/internal/queue"
	"github.com/iliyamo/tutor-accounts/internal/repository"
	"github.com/iliyamo/tutor-accounts/internal/router"
	"github.com/iliyamo/tutor-accounts/internal/service"
	"github.com/iliyamo/tutor-accounts/internal/utils"
)

const shutdownTimeout = 10 * time.Second

// newRootCommand runs serve when no subcommand is given.
func newRootCommand() *cobra.Command {
	serve := newServeCommand()
	root := &cobra.Command{
		Use:           "tutor-accounts",
		Short:         "Account and authentication service for the tutoring platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.Flags().AddFlagSet(serve.Flags())
	root.AddCommand(serve, newMigrateCommand())
	return root
}

func newServeCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and the account event consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the users, refresh_tokens and advisory_locks tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := logger.New(cfg.Env)

			db, err := database.Open(cfg)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			log.Info("schema is up to date")
			return nil
		},
	}
}

func serve(parent context.Context, migrate bool) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg := config.Load()
	log := logger.New(cfg.Env)

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if migrate {
		if err := database.Migrate(parent, db); err != nil {
			return err
		}
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.WithField("addr", cfg.Redis.Addr).Warn("redis unavailable; profile cache disabled")
	} else {
		defer rdb.Close()
	}

	issuer := utils.NewTokenIssuer(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	cache := repository.NewProfileCache(cfg.Cache, rdb)
	publisher := queue.NewPublisher(cfg.RabbitMQURL, log)

	authSvc := service.NewAuthService(users, tokens, issuer, cfg.BcryptCost,
		service.WithEvents(publisher), service.WithCache(cache), service.WithLogger(log))
	userSvc := service.NewUserService(users, service.WithCache(cache), service.WithLogger(log))

	e := router.New(log, issuer, router.Handlers{
		Auth: handler.NewAuthHandler(authSvc),
		User: handler.NewUserHandler(userSvc),
		OAuth: &handler.OAuthHandler{
			Google:       oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.BackendURL),
			Auth:         authSvc,
			FrontendURL:  cfg.FrontendURL,
			SecureCookie: cfg.Env == "prod",
			Log:          log,
		},
	})

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RabbitMQURL != "" {
		consumer := &queue.Consumer{URL: cfg.RabbitMQURL, Dir: "logs", Log: log}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("account consumer stopped")
			}
		}()
	} else {
		log.Warn("RABBITMQ_URL not set; account events are not published")
	}

	errc := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
