package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	httpadapter "parcelhub/internal/adapters/in/http"
	"parcelhub/internal/adapters/out/kafka"
	"parcelhub/internal/adapters/out/memory"
	"parcelhub/internal/adapters/out/postgres"
	"parcelhub/internal/adapters/out/postgres/changefeed"
	"parcelhub/internal/core/application/usecases/commands"
	"parcelhub/internal/core/application/usecases/queries"
	"parcelhub/internal/core/ports"
	"parcelhub/internal/jobs"
	"parcelhub/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	metricsNamespace      = "parcelhub"
	relayName             = "kafka"
	defaultRelayBatchSize = 100
)

type CompositionRoot struct {
	configs    Config
	logger     *slog.Logger
	metrics    *metrics.Metrics
	uowFactory ports.UnitOfWorkFactory
	changeFeed ports.ChangeFeed
	feed       *changefeed.Feed
	publisher  *kafka.Publisher
	closers    []func() error
}

// NewCompositionRoot opens the configured store. With the postgres driver
// it migrates the schema and prepares the change listener; call Run to
// start listening.
func NewCompositionRoot(configs Config, logger *slog.Logger) (*CompositionRoot, error) {
	if err := configs.Validate(); err != nil {
		return nil, err
	}

	root := &CompositionRoot{
		configs: configs,
		logger:  logger,
		metrics: metrics.NewMetrics(metricsNamespace, prometheus.DefaultRegisterer),
	}

	switch configs.StoreDriver {
	case StoreDriverMemory:
		store := memory.NewStore()
		root.uowFactory = store.NewUnitOfWorkFactory()
		root.changeFeed = store
		logger.Warn("Using the in-memory store; data is lost on restart")
	case StoreDriverPostgres:
		if err := root.openPostgres(); err != nil {
			return nil, err
		}
	}

	if brokers := configs.kafkaBrokers(); len(brokers) > 0 {
		publisher, err := kafka.NewPublisher(kafka.Config{
			Brokers: brokers,
			Topic:   configs.KafkaParcelEventsTopic,
		}, logger)
		if err != nil {
			_ = root.Close()
			return nil, err
		}
		root.publisher = publisher
		root.closers = append(root.closers, publisher.Close)
	}

	return root, nil
}

func (c *CompositionRoot) openPostgres() error {
	gormDB, err := gorm.Open(pgdriver.Open(c.configs.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	c.closers = append(c.closers, sqlDB.Close)

	if err := postgres.Migrate(gormDB); err != nil {
		_ = c.Close()
		return err
	}

	c.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB)
	feed, err := changefeed.NewFeed(c.configs.DSN(), c.uowFactory, c.logger)
	if err != nil {
		_ = c.Close()
		return err
	}
	c.feed = feed
	c.changeFeed = feed
	return nil
}

// Run blocks on the postgres change listener until ctx ends. The memory
// store notifies on commit, so there it only waits for ctx.
func (c *CompositionRoot) Run(ctx context.Context) error {
	if c.feed == nil {
		<-ctx.Done()
		return nil
	}
	return c.feed.Run(ctx)
}

func (c *CompositionRoot) Close() error {
	var errList []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errList = append(errList, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(errList...)
}

func (c *CompositionRoot) now() time.Time {
	return time.Now().UTC()
}

func (c *CompositionRoot) parcelUoWFactory() commands.ParcelUoWFactory {
	return FuncParcelUoWFactory(func() commands.ParcelUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) manifestUoWFactory() commands.ManifestUoWFactory {
	return FuncManifestUoWFactory(func() commands.ManifestUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) transitRouteUoWFactory() commands.TransitRouteUoWFactory {
	return FuncTransitRouteUoWFactory(func() commands.TransitRouteUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) relayUoWFactory() commands.RelayUoWFactory {
	return FuncRelayUoWFactory(func() commands.RelayUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCommandHandlers() httpadapter.CommandHandlers {
	return httpadapter.CommandHandlers{
		RegisterParcel: commands.NewRegisterParcelCommandHandler(c.parcelUoWFactory(), c.now),
		ParcelEvent:    commands.NewParcelEventCommandHandler(c.parcelUoWFactory(), c.now),
		ScanOut:        commands.NewScanOutCommandHandler(c.manifestUoWFactory(), c.now),
		BulkSort:       commands.NewBulkSortCommandHandler(c.parcelUoWFactory(), c.now),
		CreateManifest: commands.NewCreateManifestCommandHandler(c.manifestUoWFactory(), c.now),
		ManifestStatus: commands.NewManifestStatusCommandHandler(c.manifestUoWFactory(), c.now),
		TransitRoute:   commands.NewTransitRouteCommandHandler(c.transitRouteUoWFactory(), c.now),
	}
}

func (c *CompositionRoot) CreateQueryHandlers() httpadapter.QueryHandlers {
	return httpadapter.QueryHandlers{
		GetParcel:      queries.NewGetParcelQueryHandler(c.uowFactory),
		ParcelHistory:  queries.NewParcelHistoryQueryHandler(c.uowFactory),
		StationParcels: queries.NewListStationParcelsQueryHandler(c.uowFactory),
		Manifests:      queries.NewManifestQueryHandler(c.uowFactory),
		TransitRoutes:  queries.NewTransitRouteQueryHandler(c.uowFactory),
	}
}

func (c *CompositionRoot) CreateEcho() (*echo.Echo, error) {
	server := httpadapter.NewServer(
		c.CreateCommandHandlers(),
		c.CreateQueryHandlers(),
		c.changeFeed,
		c.metrics,
		c.logger,
	)
	return httpadapter.NewEcho(server, []byte(c.configs.JWTSecret), c.logger)
}

// CreateJobManager wires the event relay. Without a broker the manager has
// no jobs.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	if c.publisher == nil {
		c.logger.Warn("KAFKA_HOST is empty; warehouse events are not relayed")
		return jobs.NewJobManager(nil)
	}

	batchSize, _ := c.configs.relayBatchSize()
	handler := commands.NewRelayEventsCommandHandler(c.relayUoWFactory(), c.publisher)
	return jobs.NewJobManager(jobs.NewEventRelayJob(
		handler,
		relayName,
		c.configs.RelaySchedule,
		batchSize,
		c.metrics,
		c.logger,
	))
}

type FuncParcelUoWFactory func() commands.ParcelUoW

func (f FuncParcelUoWFactory) Create() commands.ParcelUoW {
	return f()
}

type FuncManifestUoWFactory func() commands.ManifestUoW

func (f FuncManifestUoWFactory) Create() commands.ManifestUoW {
	return f()
}

type FuncTransitRouteUoWFactory func() commands.TransitRouteUoW

func (f FuncTransitRouteUoWFactory) Create() commands.TransitRouteUoW {
	return f()
}

type FuncRelayUoWFactory func() commands.RelayUoW

func (f FuncRelayUoWFactory) Create() commands.RelayUoW {
	return f()
}
