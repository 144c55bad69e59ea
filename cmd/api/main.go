package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskboard/task-manager/internal/api"
	"github.com/taskboard/task-manager/internal/core/ports"
	"github.com/taskboard/task-manager/internal/core/service"
	"github.com/taskboard/task-manager/internal/infrastructure/config"
	"github.com/taskboard/task-manager/internal/infrastructure/db/memory"
	mongodb "github.com/taskboard/task-manager/internal/infrastructure/db/mongo"
	redisdb "github.com/taskboard/task-manager/internal/infrastructure/db/redis"
	httpserver "github.com/taskboard/task-manager/internal/infrastructure/http"
	"github.com/taskboard/task-manager/internal/infrastructure/queue"
	"github.com/taskboard/task-manager/internal/infrastructure/realtime"
	"github.com/taskboard/task-manager/pkg/logger"
)

// @title                       Task Manager API
// @version                     1.0
// @description                 Task management backend with assignment notifications and a realtime channel.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the session token.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.New(logger.Options{Service: "task-manager"})
		boot.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "task-manager",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

type stores struct {
	users         ports.UserRepository
	tasks         ports.TaskRepository
	notifications ports.NotificationRepository
}

// run blocks until ctx is cancelled or the HTTP server fails. Background
// workers are stopped on either path before it returns.
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// --- Persistence ---
	var (
		st stores
		db *mongo.Database
	)
	switch cfg.Store {
	case config.StoreMongo:
		client, database, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect")
			}
		}()
		db = database

		users := mongodb.NewUserRepository(db)
		tasks := mongodb.NewTaskRepository(db)
		notifications := mongodb.NewNotificationRepository(db)
		if err := mongodb.EnsureIndexes(ctx, users, tasks, notifications); err != nil {
			return err
		}
		st = stores{users: users, tasks: tasks, notifications: notifications}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")

	case config.StoreMemory:
		mem := memory.NewStore()
		st = stores{users: mem.Users(), tasks: mem.Tasks(), notifications: mem.Notifications()}
		log.Warn().Msg("using in-memory store, data is lost on restart")
	}

	// --- Realtime delivery: hub, optional redis relay, emit queue ---
	hub := realtime.NewHub(log)
	defer hub.Close()

	var (
		sink       ports.Broadcaster = hub
		rdb        *goredis.Client
		background sync.WaitGroup
	)
	if cfg.Realtime.Relay == config.RelayRedis {
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer client.Close()
		rdb = client

		relay := redisdb.NewRelay(rdb, hub, log)
		sink = relay
		background.Add(1)
		go func() {
			defer background.Done()
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("realtime relay stopped")
			}
		}()
		log.Info().Str("addr", cfg.Redis.Addr).Msg("realtime events relayed through redis")
	}

	emitter := queue.NewEmitter(cfg.Realtime.Workers, cfg.Realtime.QueueBuffer, sink, log)
	emitter.Start(ctx)
	defer func() {
		cancel()
		emitter.Wait()
		background.Wait()
	}()

	// --- Services ---
	tokens := service.NewJWTTokenService(cfg.JWTSecret, cfg.TokenTTL)
	dispatcher := service.NewNotificationDispatcher(st.notifications, emitter, log)

	if cfg.UnscopedSearch {
		log.Warn().Msg("TASKS_UNSCOPED_SEARCH is enabled: task search ignores ownership")
	}
	tasks := service.NewTaskService(st.tasks, st.users, dispatcher,
		service.TaskServiceOptions{UnscopedSearch: cfg.UnscopedSearch}, log)

	e := api.NewRouter(api.RouterConfig{
		Users:         st.users,
		Tokens:        tokens,
		Auth:          service.NewAuthService(st.users, tokens),
		Tasks:         tasks,
		Notifications: service.NewNotificationService(st.notifications),
		Hub:           hub,
		Mongo:         db,
		Redis:         rdb,
		AllowOrigins:  cfg.AllowOrigins,
		Logger:        log,
	})

	return httpserver.NewServer(e, cfg.Addr(), log).Run(ctx)
}
