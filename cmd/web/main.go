// Command web serves the WashHub car-wash marketplace.
//
//	@title						WashHub API
//	@version					1.0
//	@description				Read-only JSON views over laundries, services and bookings.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	SessionCookie
//	@in							cookie
//	@name						wh_session
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/washhub/carwash-web/internal/api"
	"github.com/washhub/carwash-web/internal/api/metrics"
	"github.com/washhub/carwash-web/internal/api/middleware"
	"github.com/washhub/carwash-web/internal/api/view"
	"github.com/washhub/carwash-web/internal/core/ports"
	"github.com/washhub/carwash-web/internal/core/service"
	"github.com/washhub/carwash-web/internal/infrastructure/config"
	mongodb "github.com/washhub/carwash-web/internal/infrastructure/db/mongo"
	redisdb "github.com/washhub/carwash-web/internal/infrastructure/db/redis"
	"github.com/washhub/carwash-web/internal/infrastructure/email"
	"github.com/washhub/carwash-web/internal/infrastructure/queue"
	"github.com/washhub/carwash-web/internal/infrastructure/supabase"
	"github.com/washhub/carwash-web/pkg/i18n"
	"github.com/washhub/carwash-web/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		// The process logger may not be initialised yet when config fails.
		logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "carwash-web",
	})

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	audits := mongodb.NewAuditRepository(db)
	inquiries := mongodb.NewInquiryRepository(db)
	if err := mongodb.EnsureIndexes(ctx, audits, inquiries); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()
	sessionStore := redisdb.NewSessionStore(rdb)

	backend, err := supabase.New(supabase.Config{
		URL:     cfg.Supabase.URL,
		AnonKey: cfg.Supabase.AnonKey,
		Timeout: cfg.Supabase.Timeout,
	}, logger.For("supabase"))
	if err != nil {
		return err
	}
	authProvider := supabase.NewAuth(backend)
	profileRepo := supabase.NewProfileRepository(backend)
	laundryRepo := supabase.NewLaundryRepository(backend)
	serviceRepo := supabase.NewServiceRepository(backend)
	bookingRepo := supabase.NewBookingRepository(backend)

	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, audits, logger.For("audit"))
	unsubscribe := authProvider.Subscribe(func(ev ports.AuthEvent) {
		metrics.AuthEventsTotal.WithLabelValues(string(ev.Type)).Inc()
		log.Debug().Str("event", string(ev.Type)).Str("user_id", ev.UserID).Msg("auth event")
		dispatcher.ListenAuth(ev)
	})
	defer unsubscribe()

	var mailer ports.Mailer
	if cfg.Resend.APIKey != "" {
		mailer = email.NewResendMailer(cfg.Resend.APIKey, cfg.Resend.From, cfg.Resend.Inbox)
	} else {
		log.Warn().Msg("RESEND_API_KEY not set, contact messages are stored only")
	}

	resolver := service.NewSessionResolver(authProvider, profileRepo, logger.For("session"))
	authSvc := service.NewAuthService(authProvider, profileRepo, sessionStore, service.AuthOptions{
		SessionTTL:  cfg.Session.TTL,
		CallbackURL: cfg.CallbackURL(),
	}, logger.For("auth"))
	laundrySvc := service.NewLaundryService(laundryRepo, logger.For("laundry"))

	renderer, err := view.NewRenderer()
	if err != nil {
		return err
	}
	catalog, err := i18n.Load(i18n.EmbeddedLocales)
	if err != nil {
		return err
	}

	e := api.NewRouter(api.Deps{
		Log:      log,
		Renderer: renderer,
		Catalog:  catalog,
		Sessions: middleware.NewSessionManager(middleware.SessionOptions{
			Secret: []byte(cfg.Session.Secret),
			TTL:    cfg.Session.TTL,
			Secure: cfg.Session.CookieSecure,
		}, authSvc, resolver, logger.For("session")),
		Resolver:             resolver,
		Auth:                 authSvc,
		Profiles:             service.NewProfileService(profileRepo, logger.For("profile")),
		Laundries:            laundrySvc,
		Services:             service.NewCatalogService(serviceRepo, laundrySvc, logger.For("catalog")),
		Bookings:             service.NewBookingService(bookingRepo, laundryRepo, serviceRepo, audits, dispatcher, logger.For("booking")),
		Contact:              service.NewContactService(inquiries, mailer, logger.For("contact")),
		BookingRedirectDelay: cfg.Booking.RedirectDelay,
		CookieSecure:         cfg.Session.CookieSecure,
		Mongo:                db,
		Redis:                rdb,
		Backend:              backend,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           withCORS(e, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	dispatcher.Start(workerCtx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	err = g.Wait()
	stopWorkers()
	dispatcher.Wait()
	return err
}

// withCORS lets the listed origins read the JSON API with the session cookie.
// With no origins configured the handler is returned unchanged.
func withCORS(h http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return h
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}).Handler(h)
}
