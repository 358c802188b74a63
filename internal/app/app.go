// Package app wires configuration, storage, messaging and HTTP together and
// owns their lifecycle.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/notification"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/ratelimit"
	"github.com/iliyamo/cinema-booking/internal/repository"
	"github.com/iliyamo/cinema-booking/internal/repository/memory"
	"github.com/iliyamo/cinema-booking/internal/router"
	"github.com/iliyamo/cinema-booking/internal/service"
	"github.com/iliyamo/cinema-booking/internal/service/ports"
	"github.com/iliyamo/cinema-booking/internal/utils"
)

type App struct {
	cfg  config.Config
	log  *zap.Logger
	echo *echo.Echo

	db          *sql.DB
	rdb         *redis.Client
	publisher   *queue.Publisher
	eventLog    *queue.EventLog
	consumer    *queue.Consumer
	consumed    chan struct{}
	loginWindow *ratelimit.MemoryWindow
}

type stores struct {
	users   ports.UserRepo
	movies  ports.MovieRepo
	tickets ports.TicketRepo
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	st, err := a.initStorage(ctx)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	a.initRedis(ctx)

	limiter, err := a.initLoginLimiter()
	if err != nil {
		a.close()
		return nil, fmt.Errorf("init login limiter: %w", err)
	}
	notifier, err := a.initEvents()
	if err != nil {
		a.close()
		return nil, fmt.Errorf("init events: %w", err)
	}

	issuer := utils.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTTL())
	authSvc := service.NewAuthService(st.users, utils.NewBcryptHasher(cfg.BcryptCost), issuer, limiter, notifier, log.Named("auth"))
	userSvc := service.NewUserService(st.users)
	movieSvc := service.NewMovieService(st.movies, st.tickets, notifier, log.Named("movies"))
	ticketSvc := service.NewTicketService(st.tickets, st.movies, st.users, notifier, log.Named("tickets"))

	deps := router.Deps{
		Log:       log.Named("http"),
		Verifier:  issuer,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     middleware.NewResponseCache(config.LoadCacheConfig(), a.rdb, log.Named("cache")),
		Health:    map[string]handler.Pinger{},
		Auth:      handler.NewAuthHandler(authSvc, log),
		Users:     handler.NewUserHandler(userSvc, log),
		Movies:    handler.NewMovieHandler(movieSvc, ticketSvc, log),
		Tickets:   handler.NewTicketHandler(ticketSvc, log),
	}
	if a.rdb != nil {
		rl := deps.RateLimit
		deps.Limiter = ratelimit.NewTokenBucket(a.rdb, ratelimit.BucketConfig{
			Capacity:       rl.Capacity,
			RefillTokens:   rl.RefillTokens,
			RefillInterval: rl.RefillInterval,
			TTL:            rl.TTL,
		})
		deps.Health["redis"] = pingFunc(func(ctx context.Context) error { return a.rdb.Ping(ctx).Err() })
	}
	if a.db != nil {
		deps.Health["mysql"] = a.db
	}
	a.echo = router.New(deps)
	return a, nil
}

func (a *App) initStorage(ctx context.Context) (stores, error) {
	if a.cfg.StorageDriver != config.StorageMySQL {
		a.log.Info("using in-memory storage")
		return stores{
			users:   memory.NewUserStore(),
			movies:  memory.NewMovieStore(),
			tickets: memory.NewTicketStore(),
		}, nil
	}

	db, err := database.Open(ctx, database.Options{
		User:     a.cfg.DBUser,
		Password: a.cfg.DBPass,
		Host:     a.cfg.DBHost,
		Port:     a.cfg.DBPort,
		Name:     a.cfg.DBName,
	})
	if err != nil {
		return stores{}, err
	}
	a.db = db
	if err := database.Migrate(ctx, db, a.log.Named("migrate")); err != nil {
		return stores{}, err
	}
	a.log.Info("using mysql storage", zap.String("host", a.cfg.DBHost), zap.String("db", a.cfg.DBName))
	return stores{
		users:   repository.NewUserRepo(db),
		movies:  repository.NewMovieRepo(db),
		tickets: repository.NewTicketRepo(db),
	}, nil
}

// initRedis is best effort; without Redis the cache and HTTP limiter are off.
func (a *App) initRedis(ctx context.Context) {
	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		a.log.Warn("redis unavailable, cache and rate limiting disabled", zap.Error(err))
		return
	}
	a.rdb = rdb
}

func (a *App) initLoginLimiter() (ports.LoginLimiter, error) {
	lc := config.LoadLoginLimitConfig()
	if !lc.Enabled {
		return nil, nil
	}
	wc := ratelimit.WindowConfig{MaxAttempts: lc.MaxAttempts, Window: lc.Window, Prefix: lc.Prefix}
	if lc.Backend == "redis" && a.rdb != nil {
		return ratelimit.NewRedisWindow(a.rdb, wc), nil
	}
	w := ratelimit.NewMemoryWindow(wc, a.log.Named("login-limit"))
	if err := w.Start(lc.Sweep); err != nil {
		return nil, err
	}
	a.loginWindow = w
	return w, nil
}

// initEvents always logs events; with a broker URL they are also published,
// and EVENTS_CONSUMER runs the event log consumer in this process.
func (a *App) initEvents() (ports.EventNotifier, error) {
	notifiers := notification.Multi{notification.NewLogNotifier(a.log)}
	if a.cfg.AMQPURL == "" {
		return notifiers, nil
	}

	a.publisher = queue.NewPublisher(a.cfg.AMQPURL, a.cfg.EventsQueue, a.cfg.EventsBuffer, a.log.Named("publisher"))
	notifiers = append(notifiers, a.publisher)

	if a.cfg.EventsConsumer {
		el, err := queue.OpenEventLog(a.cfg.EventsLogPath)
		if err != nil {
			return nil, err
		}
		a.eventLog = el
		a.consumer = queue.NewConsumer(a.cfg.AMQPURL, a.cfg.EventsQueue, el.Handle, a.log.Named("consumer"))
	}
	return notifiers, nil
}

// Run serves HTTP until ctx is cancelled, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	if a.consumer != nil {
		a.consumed = make(chan struct{})
		go func() {
			defer close(a.consumed)
			if err := a.consumer.Run(consumerCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.log.Error("event consumer stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("listening", zap.String("addr", ":"+a.cfg.Port), zap.String("env", a.cfg.Env))
		if err := a.echo.Start(":" + a.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		a.log.Error("http shutdown", zap.Error(err))
	}
	// the consumer writes to the event log, it has to stop before the log closes
	stopConsumer()
	if a.consumed != nil {
		<-a.consumed
	}
	a.close()
	a.log.Info("app stopped")
	return runErr
}

// Handler exposes the router for tests.
func (a *App) Handler() http.Handler { return a.echo }

func (a *App) close() {
	if a.publisher != nil {
		_ = a.publisher.Close()
	}
	if a.eventLog != nil {
		_ = a.eventLog.Close()
	}
	if a.loginWindow != nil {
		_ = a.loginWindow.Stop()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }
