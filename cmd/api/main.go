// @title Community Events API
// @version 1.0
// @description Event registration and external calendar sync.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"communityevents/config"
	"communityevents/internal/adapters/auth"
	"communityevents/internal/adapters/email"
	"communityevents/internal/adapters/googlecalendar"
	"communityevents/internal/adapters/ics"
	deliveryhttp "communityevents/internal/delivery/http"
	"communityevents/internal/delivery/http/controllers"
	"communityevents/internal/domain"
	"communityevents/internal/repository/memory"
	"communityevents/internal/repository/postgres"
	"communityevents/internal/services"
)

func main() {
	logger := config.NewLogger()
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if st.db != nil {
		defer st.db.Close()
	}

	provider := googlecalendar.NewProvider(&http.Client{Timeout: cfg.CalendarProviderTimeout}, cfg.GoogleCalendarEndpoint)
	bridge := services.NewCalendarBridge(provider, cfg.CalendarTimezone, cfg.CalendarProviderTimeout, logger)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.AWSRegion,
			AccessKeyID:     cfg.Email.AWSAccessKeyID,
			SecretAccessKey: cfg.Email.AWSSecretAccessKey,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("load email templates: %w", err)
	}
	emails := services.NewEmailService(mailer, renderer, logger)

	svc := services.NewRegistrationService(st.registrations, st.events, st.users, bridge, emails, cfg.Email.SendTimeout, logger)

	var pinger controllers.Pinger
	if st.db != nil {
		pinger = st.db
	}
	handler := deliveryhttp.NewRouter(deliveryhttp.RouterConfig{
		Logger:         logger,
		Verifier:       auth.NewJWTVerifier(cfg.JWTSecret),
		AllowedOrigins: cfg.AllowedOrigins,
		Registrations:  controllers.NewRegistrationController(logger, svc, ics.NewExporter(bridge, logger)),
		Health:         controllers.NewHealthController(logger, pinger),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment, "store", cfg.StoreDriver, "timezone", cfg.CalendarTimezone.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type stores struct {
	db            *sql.DB
	events        domain.EventCatalog
	users         domain.UserDirectory
	registrations domain.RegistrationStore
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		catalog := memory.NewCatalog()
		if cfg.SeedFile != "" {
			users, events, err := catalog.LoadSeedFile(cfg.SeedFile)
			if err != nil {
				return nil, fmt.Errorf("seed memory store: %w", err)
			}
			logger.Info("memory store seeded", "users", users, "events", events)
		}
		return &stores{
			events:        catalog,
			users:         catalog.Users(),
			registrations: memory.NewRegistrationStore(catalog, catalog.Users()),
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		return nil, err
	}
	return &stores{
		db:            db,
		events:        postgres.NewEventRepository(db),
		users:         postgres.NewUserRepository(db),
		registrations: postgres.NewRegistrationRepository(db),
	}, nil
}
