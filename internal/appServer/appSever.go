package appServer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/voucher-reminder/config"
	"github.com/ds124wfegd/voucher-reminder/internal/database"
	postgresRepo "github.com/ds124wfegd/voucher-reminder/internal/database/postgres"
	redisCache "github.com/ds124wfegd/voucher-reminder/internal/database/redis"
	scyllaRepo "github.com/ds124wfegd/voucher-reminder/internal/database/scylla"
	"github.com/ds124wfegd/voucher-reminder/internal/entity"
	"github.com/ds124wfegd/voucher-reminder/internal/metrics"
	"github.com/ds124wfegd/voucher-reminder/internal/service"
	"github.com/ds124wfegd/voucher-reminder/internal/transport"
	"github.com/ds124wfegd/voucher-reminder/internal/worker"

	"github.com/ds124wfegd/voucher-reminder/pkg/kafka"
	"github.com/ds124wfegd/voucher-reminder/pkg/postgres"
	"github.com/ds124wfegd/voucher-reminder/pkg/queue"
	"github.com/ds124wfegd/voucher-reminder/pkg/rabbitmq"
	"github.com/ds124wfegd/voucher-reminder/pkg/redis"
	"github.com/ds124wfegd/voucher-reminder/pkg/scheduler"
	"github.com/ds124wfegd/voucher-reminder/pkg/scylla"
	"github.com/ds124wfegd/voucher-reminder/pkg/telegram"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// App is the wired reminder service with everything it holds open.
type App struct {
	Reminders service.ReminderService
	Worker    *worker.ReminderWorker

	closers []func()
}

// NewApp connects the configured store, lookup cache, dispatch driver and
// ops notifier, and builds the reminder service on top of them.
func NewApp(cfg *config.Config) (_ *App, err error) {
	app := &App{}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	repos, err := app.openStore(cfg)
	if err != nil {
		return nil, err
	}

	var redisClient *goredis.Client
	needRedis := cfg.Cache.Enabled || cfg.Dispatch.Driver == "redis"
	if needRedis {
		redisClient, err = redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		app.onClose(func() { redisClient.Close() })
	}

	users, establishments := repos.Users, repos.Establishments
	if cfg.Cache.Enabled {
		users = redisCache.NewCachedUserRepository(users, redisClient, cfg.Cache.TTL)
		establishments = redisCache.NewCachedEstablishmentRepository(establishments, redisClient, cfg.Cache.TTL)
		logrus.WithField("ttl", cfg.Cache.TTL).Info("Lookup cache enabled")
	}

	dispatcher, err := app.newDispatcher(cfg, repos, redisClient)
	if err != nil {
		return nil, err
	}

	app.Reminders = service.NewReminderService(repos.Vouchers, users, establishments, dispatcher, service.ReminderOptions{
		Concurrency:  cfg.Reminder.Concurrency,
		QueryTimeout: cfg.Reminder.QueryTimeout,
		ItemTimeout:  cfg.Reminder.ItemTimeout,
		Location:     cfg.Reminder.Location(),
		AppURL:       cfg.Reminder.AppURL,
		SupportEmail: cfg.Reminder.SupportEmail,
		Metrics:      metrics.Default(),
	})

	var notifier worker.Notifier
	if cfg.Telegram.Enabled && cfg.Telegram.BotToken != "" {
		notifier = telegram.NewBot(cfg.Telegram.BotToken)
		logrus.Info("Telegram bot initialized")
	} else {
		logrus.Warn("Telegram notifications disabled")
	}
	app.Worker = worker.NewReminderWorker(app.Reminders, notifier, cfg.Telegram.ChatID)

	return app, nil
}

func (a *App) openStore(cfg *config.Config) (*database.Repositories, error) {
	switch cfg.Store.Driver {
	case "postgres", "":
		db, err := postgres.NewPostgresDB(&cfg.Database)
		if err != nil {
			return nil, err
		}
		a.onClose(func() { db.Close() })

		if err := postgres.RunMigrations(db); err != nil {
			return nil, err
		}
		return postgresRepo.NewRepositories(db), nil

	case "scylla":
		session, err := scylla.NewSession(&cfg.Scylla)
		if err != nil {
			return nil, err
		}
		a.onClose(session.Close)

		if err := scylla.RunMigrations(session); err != nil {
			return nil, err
		}
		return scyllaRepo.NewRepositories(session), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func (a *App) newDispatcher(cfg *config.Config, repos *database.Repositories, redisClient *goredis.Client) (service.MailDispatcher, error) {
	logrus.WithField("driver", cfg.Dispatch.Driver).Info("Initializing mail dispatcher")

	switch cfg.Dispatch.Driver {
	case "store", "":
		return service.NewStoreDispatcher(repos.Mail), nil

	case "redis":
		q := queue.NewRedisQueue(redisClient, cfg.Dispatch.RedisQueue)
		return service.NewQueueDispatcher(q), nil

	case "rabbitmq":
		mq, err := rabbitmq.NewMailPublisher(rabbitmq.Config{
			URL:         cfg.RabbitMQ.URL,
			QueueName:   cfg.RabbitMQ.QueueName,
			MessageType: string(queue.TaskTypeSendMail),
		})
		if err != nil {
			return nil, err
		}
		a.onClose(func() {
			if err := mq.Close(); err != nil {
				logrus.Errorf("error closing RabbitMQ: %v", err)
			}
		})
		return service.NewRabbitMQDispatcher(mq), nil

	case "kafka":
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		a.onClose(func() {
			if err := producer.Close(); err != nil {
				logrus.Errorf("error closing Kafka producer: %v", err)
			}
		})
		return service.NewKafkaDispatcher(producer), nil

	default:
		return nil, fmt.Errorf("unknown dispatch driver %q", cfg.Dispatch.Driver)
	}
}

func (a *App) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// RunOnce performs a single synchronous sweep, for the sweep command.
func RunOnce(ctx context.Context, cfg *config.Config) (*entity.SweepSummary, error) {
	app, err := NewApp(cfg)
	if err != nil {
		return nil, err
	}
	defer app.Close()

	return app.Reminders.RunSweep(ctx)
}

// NewServer runs the scheduler and HTTP surface until SIGINT or SIGTERM.
func NewServer(cfg *config.Config) error {
	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reminderScheduler, err := scheduler.NewScheduler(cfg.Reminder.Schedule, cfg.Reminder.Location(), app.Worker.Run)
	if err != nil {
		return err
	}
	if err := reminderScheduler.Start(ctx); err != nil {
		return err
	}
	defer reminderScheduler.Stop()
	logrus.WithFields(logrus.Fields{
		"schedule": cfg.Reminder.Schedule,
		"timezone": cfg.Reminder.TimeZone,
		"next_run": reminderScheduler.Next(),
	}).Info("Reminder scheduler started")

	if cfg.Server.Mode == "release" || cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	reminderHandler := transport.NewReminderHandler(app.Reminders, cfg.Reminder.SweepTimeout)
	router := transport.InitRoutes(reminderHandler, app.Worker, cfg.Server.Timeout)

	srv := new(Server)
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Run(cfg, router); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	select {
	case <-quit:
	case err := <-serverErr:
		logrus.Errorf("error occured while running http server: %s", err.Error())
		return err
	}

	logrus.Print("App Shutting Down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
	return nil
}
