package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/felixgeelhaar/taskdeck/internal/settings"
	"github.com/felixgeelhaar/taskdeck/internal/tasks/domain/task"
	"github.com/felixgeelhaar/taskdeck/internal/tasks/store"
	"github.com/felixgeelhaar/taskdeck/internal/tasks/store/breaker"
	"github.com/felixgeelhaar/taskdeck/internal/tasks/store/memory"
	"github.com/felixgeelhaar/taskdeck/internal/tasks/store/notify"
	"github.com/felixgeelhaar/taskdeck/internal/tasks/store/postgres"
	"github.com/felixgeelhaar/taskdeck/internal/tasks/store/sqlite"
	"github.com/felixgeelhaar/taskdeck/internal/tasks/syncer"
	"github.com/felixgeelhaar/taskdeck/pkg/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// App holds the CLI application dependencies.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Store         store.Store
	Sync          *syncer.Synchronizer
	Settings      settings.Store
	CurrentUserID uuid.UUID

	closers []func() error
}

var app *App

// GetApp returns the wired application container.
func GetApp() *App { return app }

// SetApp installs an application container (tests use this to inject
// fakes).
func SetApp(a *App) { app = a }

// NewApp wires configuration, store backend and synchronizer, and
// signs in the configured user.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	userID, err := uuid.Parse(cfg.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid TASKDECK_USER_ID: %w", err)
	}
	a.CurrentUserID = userID

	backend, err := a.openBackend(ctx)
	if err != nil {
		return nil, err
	}
	a.Store = breaker.New(backend, breaker.DefaultConfig(), logger)

	a.Settings = a.Store
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(redisOpts)
		a.closers = append(a.closers, client.Close)
		a.Settings = settings.NewRedisCache(client, a.Store, cfg.SettingsTTL, logger)
	}

	a.Sync = syncer.New(a.Store, logger)
	if err := a.Sync.SignIn(ctx, userID); err != nil {
		a.Close()
		return nil, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.Sync.WaitSynchronized(waitCtx); err != nil {
		logger.Warn("initial sync not confirmed", "error", err)
	}

	return a, nil
}

func (a *App) openBackend(ctx context.Context) (store.Store, error) {
	cfg := a.Config
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return memory.NewStore(), nil

	case config.DriverPostgres:
		return postgres.Connect(ctx, cfg.DatabaseURL, a.Logger)

	case config.DriverSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = sqlite.DefaultPath()
		}
		st, err := sqlite.Open(path, a.Logger)
		if err != nil {
			return nil, err
		}
		if cfg.AMQPURL != "" {
			b, err := notify.NewAMQPBroadcaster(cfg.AMQPURL, a.Logger)
			if err != nil {
				a.Logger.Warn("change broadcaster unavailable, staying local-only", "error", err)
			} else {
				st.EnableBroadcast(ctx, b)
				a.closers = append(a.closers, b.Close)
			}
		}
		return st, nil

	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
	}
}

// Close signs out and releases every resource acquired by NewApp.
func (a *App) Close() {
	if a.Sync != nil {
		a.Sync.SignOut()
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn("failed to close store", "error", err)
		}
	}
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			a.Logger.Warn("failed to release resource", "error", err)
		}
	}
}

// resolveTaskID accepts a full task id or an unambiguous prefix.
func resolveTaskID(a *App, arg string) (uuid.UUID, error) {
	if id, err := uuid.Parse(arg); err == nil {
		return id, nil
	}

	var match uuid.UUID
	var found int
	for _, t := range a.Sync.Tasks() {
		if strings.HasPrefix(t.ID().String(), arg) {
			match = t.ID()
			found++
		}
	}
	switch found {
	case 0:
		return uuid.Nil, fmt.Errorf("no task matches %q", arg)
	case 1:
		return match, nil
	default:
		return uuid.Nil, fmt.Errorf("%q is ambiguous, matches %d tasks", arg, found)
	}
}

func formatDue(t *task.Task) string {
	if t.DueDate() == nil {
		return "-"
	}
	return t.DueDate().Format("Mon, Jan 2 2006")
}
