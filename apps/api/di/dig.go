package di

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/fitsenior/backend/apps/api/echo"
	"github.com/fitsenior/backend/core"
	emailsvc "github.com/fitsenior/backend/services/email"
	logsvc "github.com/fitsenior/backend/services/logger"
	metricsvc "github.com/fitsenior/backend/services/metrics"
	realtimesvc "github.com/fitsenior/backend/services/realtime"
	storagesvc "github.com/fitsenior/backend/services/storage"
	"github.com/fitsenior/backend/storage/database"
	inmemdb "github.com/fitsenior/backend/storage/database/inmem"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Cleanup collects what must be released when the API stops, in reverse order of registration.
type Cleanup struct {
	fns []func() error
}

func (c *Cleanup) add(fn func() error) {
	c.fns = append(c.fns, fn)
}

// Run releases everything, newest first, and returns the first error it meets.
func (c *Cleanup) Run() error {
	var first error
	for i := len(c.fns) - 1; i >= 0; i-- {
		if err := c.fns[i](); err != nil && first == nil {
			first = err
		}
	}
	c.fns = nil
	return first
}

func newLogger(conf *core.Config, cleanup *Cleanup) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	cleanup.add(func() error {
		logger.Close()
		return nil
	})
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
}

// newRepositories opens the configured storage engine; postgres is created and migrated first.
func newRepositories(ctx context.Context, conf *core.Config, cleanup *Cleanup, dbLogger DBLoggerParam) (Repositories, error) {
	if conf.Database.IsMemory() {
		dbLogger.Logger.Warn("using the in-memory database, data is lost on restart")
		return MemoryRepositories(inmemdb.Open()), nil
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		return Repositories{}, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return Repositories{}, err
	}
	cleanup.add(db.Close)

	if err = database.Migrate(ctx, db.DB); err != nil {
		return Repositories{}, err
	}
	return PostgresRepositories(db), nil
}

func newFileStorage(ctx context.Context, conf *core.Config) (core.FileStorage, error) {
	return storagesvc.NewS3Storage(ctx, conf.Storage)
}

// newHub starts the websocket hub; it stops with ctx.
func newHub(ctx context.Context, logger core.Logger) *realtimesvc.Hub {
	hub := realtimesvc.NewHub(logger)
	go hub.Run(ctx)
	return hub
}

// newPublisher fans events out through redis when enabled, so every API instance reaches its own clients.
func newPublisher(
	ctx context.Context,
	conf *core.Config,
	cleanup *Cleanup,
	hub *realtimesvc.Hub,
	logger core.Logger,
) (core.EventPublisher, error) {
	if !conf.Redis.Enabled {
		return hub, nil
	}

	client, err := realtimesvc.NewRedisClient(ctx, conf.Redis)
	if err != nil {
		return nil, errors.Wrap(err, "setting up redis")
	}
	cleanup.add(client.Close)

	bridge := realtimesvc.NewRedisBridge(client, conf.Redis.Channel, hub, logger)
	go func() {
		if err := bridge.Run(ctx); err != nil {
			logger.Error(fmt.Sprintf("redis bridge stopped: %v", err), err)
		}
	}()
	return bridge, nil
}

type infraParams struct {
	dig.In

	Conf      *core.Config
	Logger    core.Logger
	MailSvc   core.EmailService
	Storage   core.FileStorage
	Publisher core.EventPublisher
	Metrics   *metricsvc.Manager
	Hub       *realtimesvc.Hub
}

func newInfra(p infraParams) Infra {
	return Infra{
		Conf:      p.Conf,
		Logger:    p.Logger,
		MailSvc:   p.MailSvc,
		Storage:   p.Storage,
		Publisher: p.Publisher,
		Metrics:   p.Metrics,
		Hub:       p.Hub,
	}
}

// NewContainer returns the dependency injection dig.Container of the API.
// Background workers (hub, redis bridge) are bound to ctx.
func NewContainer(ctx context.Context, conf *core.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(func() context.Context { return ctx }))
	must(c.Provide(func() *core.Config { return conf }))
	must(c.Provide(func() *Cleanup { return new(Cleanup) }))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newRepositories))
	must(c.Provide(newFileStorage))
	must(c.Provide(emailsvc.New))
	must(c.Provide(func() *metricsvc.Manager { return metricsvc.NewManager() }))
	must(c.Provide(newHub))
	must(c.Provide(newPublisher))
	must(c.Provide(newInfra))
	must(c.Provide(NewServerDeps))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
