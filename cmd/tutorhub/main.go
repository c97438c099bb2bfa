package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	notificationsapi "github.com/dmitrymomot/tutorhub/modules/notifications"
	"github.com/dmitrymomot/tutorhub/pkg/config"
	"github.com/dmitrymomot/tutorhub/pkg/email"
	"github.com/dmitrymomot/tutorhub/pkg/httpserver"
	"github.com/dmitrymomot/tutorhub/pkg/logger"
	"github.com/dmitrymomot/tutorhub/pkg/mongo"
	"github.com/dmitrymomot/tutorhub/pkg/notifications"
	"github.com/dmitrymomot/tutorhub/pkg/realtime"
	"github.com/dmitrymomot/tutorhub/pkg/redis"
	"github.com/dmitrymomot/tutorhub/svc/reminder"
	"github.com/dmitrymomot/tutorhub/svc/tutoring"
)

type appConfig struct {
	Env             string `env:"APP_ENV" envDefault:"development"`
	IdentityHeader  string `env:"IDENTITY_HEADER" envDefault:"X-User-ID"`
	RoleHeader      string `env:"IDENTITY_ROLE_HEADER" envDefault:"X-User-Role"`
	ConsumerEnabled bool   `env:"AMQP_ENABLED" envDefault:"true"`

	HTTP          httpserver.Config
	Mongo         mongo.Config
	Redis         redis.Config
	Email         email.Config
	Notifications notifications.Config
	Realtime      realtime.Config
	Reminder      reminder.Config
	Consumer      tutoring.ConsumerConfig
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithEnvironment(cfg.Env, "tutorhub"),
		logger.WithContextExtractors(httpserver.RequestIDExtractor),
	)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("tutorhub stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	mongoClient, err := mongo.New(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	db := mongoClient.Database(cfg.Mongo.Database)

	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	store := notifications.NewMongoStorage(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		return err
	}
	domain := tutoring.NewMongoStore(db)
	if err := domain.EnsureIndexes(ctx); err != nil {
		return err
	}

	sender, err := newEmailSender(cfg.Email, log)
	if err != nil {
		return err
	}

	hub := realtime.NewHub(cfg.Realtime, realtime.WithHubLogger(log))
	defer func() { _ = hub.Close() }()

	manager := notifications.NewManager(store,
		notifications.WithManagerLogger(log),
		notifications.WithConfig(cfg.Notifications),
		notifications.WithLiveChannel(hub),
		notifications.WithMailer(sender, tutoring.NewDirectory(domain)),
	)
	// pending emails get their own timeout and finish after shutdown
	defer manager.Wait()

	notifier := tutoring.NewNotifier(manager, domain, domain, tutoring.WithNotifierLogger(log))

	loc, err := time.LoadLocation(cfg.Reminder.Timezone)
	if err != nil {
		return err
	}
	reminderOpts := []reminder.Option{
		reminder.WithLogger(log),
		reminder.WithLocation(loc),
		reminder.WithCleanupDays(cfg.Reminder.CleanupDaysOld),
	}
	if cfg.Reminder.Dedupe {
		reminderOpts = append(reminderOpts, reminder.WithGuard(
			reminder.NewRedisGuard(redisClient, "tutorhub:", cfg.Reminder.DedupeTTL),
		))
	}
	reminders := reminder.NewService(domain, notifier, manager, reminderOpts...)

	api := notificationsapi.NewService(manager,
		notificationsapi.WithLogger(log),
		notificationsapi.WithStreamer(hub),
		notificationsapi.WithReminders(reminders),
	)

	r := chi.NewRouter()
	r.Use(httpserver.RequestID)
	r.Get("/health/live", httpserver.HealthCheckHandler(log))
	r.Get("/health/ready", httpserver.HealthCheckHandler(log,
		httpserver.Check{Name: "mongo", Fn: mongo.Healthcheck(mongoClient)},
		httpserver.Check{Name: "redis", Fn: redis.Healthcheck(redisClient)},
	))
	r.With(
		notificationsapi.TrustedHeader(cfg.IdentityHeader),
		notificationsapi.TrustedRoleHeader(cfg.RoleHeader),
	).
		Mount("/notifications", api.Handle())

	server := httpserver.New(cfg.HTTP, r, httpserver.WithLogger(log))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx) })
	g.Go(func() error { return reminders.Start(gctx) })
	if cfg.ConsumerEnabled {
		handler := tutoring.NewEventHandler(notifier, domain, domain)
		consumer := tutoring.NewConsumer(cfg.Consumer, handler, tutoring.WithConsumerLogger(log))
		g.Go(func() error { return consumer.Run(gctx) })
	}

	log.InfoContext(ctx, "tutorhub started",
		slog.String("addr", cfg.HTTP.Addr),
		slog.String("timezone", loc.String()),
	)
	return g.Wait()
}

func newEmailSender(cfg email.Config, log *slog.Logger) (email.EmailSender, error) {
	var sender email.EmailSender
	if cfg.PostmarkEnabled() {
		client, err := email.NewPostmarkClient(cfg)
		if err != nil {
			return nil, err
		}
		sender = client
	} else {
		log.Warn("postmark is not configured, writing emails to disk", slog.String("dir", cfg.DevOutputDir))
		sender = email.NewDevSender(cfg.DevOutputDir)
	}
	return email.NewRateLimitedSender(sender, cfg.RatePerSecond, cfg.Burst), nil
}
