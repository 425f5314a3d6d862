package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Domenick1991/airreserve/config"
	"github.com/Domenick1991/airreserve/internal/events"
	"github.com/Domenick1991/airreserve/internal/kafka"
	"github.com/Domenick1991/airreserve/internal/migrations"
	"github.com/Domenick1991/airreserve/internal/rabbitmq"
	"github.com/Domenick1991/airreserve/internal/repository"
	"github.com/Domenick1991/airreserve/internal/repository/memory"
	"github.com/Domenick1991/airreserve/internal/service/reservation"
	"github.com/Domenick1991/airreserve/internal/store"
	"github.com/Domenick1991/airreserve/internal/store/postgres"
	"github.com/Domenick1991/airreserve/internal/store/sqldb"
	"go.uber.org/zap"
)

const brokerCheckTimeout = 3 * time.Second

// Storage is the store handle selected by database.driver together with the
// repositories built on it.
type Storage struct {
	Tx       store.Transactor
	Flights  repository.FlightRepository
	Bookings repository.BookingRepository
	Pinger   interface{ Ping(ctx context.Context) error }

	close func()
}

func (s *Storage) Close() {
	s.close()
}

// OpenStorage connects the configured driver and, when database.auto_migrate is set,
// brings the schema up to date first.
func OpenStorage(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*Storage, error) {
	if cfg.Driver == config.DriverMemory {
		db := memory.New()
		log.Warn("using in-memory store, data does not survive a restart")
		return &Storage{
			Tx:       db,
			Flights:  memory.NewFlightRepository(db),
			Bookings: memory.NewBookingRepository(db),
			Pinger:   db,
			close:    db.Close,
		}, nil
	}

	if cfg.AutoMigrate {
		if err := Migrate(cfg, log, migrations.Up); err != nil {
			return nil, err
		}
	}

	retry := store.RetryPolicy{MaxRetries: cfg.MaxTxRetries, Backoff: cfg.RetryBackoff()}
	var s store.Store
	switch cfg.Driver {
	case config.DriverStdlib:
		db, err := sqldb.Open(cfg)
		if err != nil {
			return nil, err
		}
		s = sqldb.New(db, retry, log)
	default:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s = postgres.New(pool, retry, log)
	}
	log.Info("connected to database", zap.String("driver", cfg.Driver), zap.String("host", cfg.Host), zap.String("name", cfg.Name))

	return &Storage{
		Tx:       s,
		Flights:  repository.NewFlightRepository(s),
		Bookings: repository.NewBookingRepository(s),
		Pinger:   s,
		close:    s.Close,
	}, nil
}

// Migrate runs step on a short-lived database/sql connection.
func Migrate(cfg config.DatabaseConfig, log *zap.Logger, step func(*sql.DB, *zap.Logger) error) error {
	db, err := sqldb.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return step(db, log)
}

// NewProducer returns the event producer for events.broker, or nil when events are
// switched off. The returned func releases the broker connection. An unreachable
// Kafka cluster is only logged: the writer connects again on every publish.
func NewProducer(ctx context.Context, cfg *config.Config, log *zap.Logger) (reservation.Producer, func(), error) {
	switch cfg.Events.Broker {
	case config.BrokerKafka:
		p := kafka.NewProducer(cfg.Kafka.Brokers, log)
		checkCtx, cancel := context.WithTimeout(ctx, brokerCheckTimeout)
		defer cancel()
		if err := p.CheckConnection(checkCtx); err != nil {
			log.Warn("kafka is not reachable, events are dropped until it is", zap.Error(err))
		}
		return p, func() {
			if err := p.Close(); err != nil {
				log.Warn("failed to close kafka producer", zap.Error(err))
			}
		}, nil
	case config.BrokerRabbitMQ:
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	default:
		return nil, func() {}, nil
	}
}

type Subscriber interface {
	Consume(ctx context.Context, handler events.Handler) error
}

// NewSubscriber returns the consumer of the reservation event stream for events.broker.
func NewSubscriber(cfg *config.Config, log *zap.Logger) (Subscriber, func(), error) {
	switch cfg.Events.Broker {
	case config.BrokerKafka:
		c := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Events.Topic, log)
		return c, func() {
			if err := c.Close(); err != nil {
				log.Warn("failed to close kafka consumer", zap.Error(err))
			}
		}, nil
	case config.BrokerRabbitMQ:
		c, err := rabbitmq.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.Queue, cfg.Events.Topic, log)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	default:
		return nil, nil, fmt.Errorf("events broker %q has no stream to consume", cfg.Events.Broker)
	}
}
