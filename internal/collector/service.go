package collector

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"emailstats/internal/gmail"
	"emailstats/internal/logger"
	"emailstats/internal/stats"
	errs "emailstats/pkg/errors"
	"emailstats/pkg/logging"
	"emailstats/pkg/metrics"
	"emailstats/pkg/retry"
	"emailstats/pkg/tracing"
)

type ServiceConfig struct {
	Query        string
	CycleTimeout time.Duration
	PersistRetry retry.Policy
}

// CycleResult describes one completed collection cycle.
type CycleResult struct {
	CycleID      string
	Record       stats.Record
	Enumerated   int
	Unclassified int
	Skipped      int
	Duration     time.Duration
}

type Service struct {
	enumerator *Enumerator
	aggregator *Aggregator
	client     gmail.Client
	repo       stats.Repository
	publisher  *stats.Publisher
	locker     Locker
	cfg        ServiceConfig
	clock      func() time.Time
	logger     logger.Logger
}

type ServiceOption func(*Service)

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		s.clock = clock
	}
}

func WithLocker(l Locker) ServiceOption {
	return func(s *Service) {
		s.locker = l
	}
}

func WithPublisher(p *stats.Publisher) ServiceOption {
	return func(s *Service) {
		s.publisher = p
	}
}

func NewService(
	client gmail.Client,
	enumerator *Enumerator,
	aggregator *Aggregator,
	repo stats.Repository,
	cfg ServiceConfig,
	log logger.Logger,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		enumerator: enumerator,
		aggregator: aggregator,
		client:     client,
		repo:       repo,
		locker:     NewLocalLocker(),
		cfg:        cfg,
		clock:      time.Now,
		logger:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunCycle enumerates the collection query, classifies every message and
// writes exactly one record. Nothing is written when any step fails.
func (s *Service) RunCycle(ctx context.Context) (res CycleResult, err error) {
	res.CycleID = uuid.NewString()
	ctx = logging.WithCycleID(ctx, res.CycleID)

	release, acquired, err := s.locker.TryLock(ctx)
	if err != nil {
		metrics.ObserveCycle(0, "lock_error")
		return res, errs.ErrServiceUnavailable.WithCause(err).WithMessage("unable to acquire cycle lock")
	}
	if !acquired {
		metrics.ObserveCycle(0, "skipped")
		s.logger.InfowCtx(ctx, "Collection cycle skipped, another cycle is running")
		return res, errs.ErrCycleInProgress
	}
	defer func() {
		if rerr := release(context.Background()); rerr != nil {
			s.logger.WarnwCtx(ctx, "Failed to release cycle lock", "error", rerr)
		}
	}()

	if s.cfg.CycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.CycleTimeout)
		defer cancel()
	}

	ctx, span := tracing.StartSpan(ctx, "collector.cycle", attribute.String("cycle.id", res.CycleID))
	started := s.clock()
	defer func() {
		res.Duration = s.clock().Sub(started)
		metrics.ObserveCycle(res.Duration, cycleStatus(err))
		tracing.EndSpan(span, err)
	}()

	s.logger.InfowCtx(ctx, "Collection cycle started", "query", s.cfg.Query)

	ids, err := s.enumerate(ctx)
	if err != nil {
		s.logger.ErrorwCtx(ctx, "Collection cycle abandoned during enumeration", "error", err)
		return res, err
	}
	res.Enumerated = len(ids)
	metrics.CollectorMessagesEnumerated.Add(float64(len(ids)))

	agg, err := s.aggregate(ctx, ids)
	if err != nil {
		s.logger.ErrorwCtx(ctx, "Collection cycle abandoned during aggregation", "error", err, "messages", len(ids))
		return res, err
	}
	res.Unclassified = agg.Unclassified
	res.Skipped = len(agg.Skipped)
	recordClassifications(agg)

	res.Record = stats.NewRecord(started, agg.Counters, res.CycleID)
	if err = s.persist(ctx, res.Record); err != nil {
		s.logger.ErrorwCtx(ctx, "Failed to persist collection record", "error", err, "day", res.Record.Day, "timestamp", res.Record.Timestamp)
		return res, err
	}

	if perr := s.publisher.Publish(ctx, res.Record); perr != nil {
		s.logger.WarnwCtx(ctx, "Failed to publish collection record", "error", perr)
	}

	s.logger.InfowCtx(ctx, "Collection cycle finished",
		"messages", res.Enumerated,
		"received_home", agg.Counters.ReceivedHome,
		"received_other", agg.Counters.ReceivedOther,
		"sent_home", agg.Counters.SentHome,
		"sent_other", agg.Counters.SentOther,
		"unclassified", res.Unclassified,
		"skipped", res.Skipped,
		"timestamp", res.Record.Timestamp,
	)
	return res, nil
}

func (s *Service) enumerate(ctx context.Context) (ids []gmail.MessageID, err error) {
	ctx, span := tracing.StartSpan(ctx, "collector.enumerate")
	defer func() { tracing.EndSpan(span, err) }()

	return s.enumerator.Enumerate(ctx, s.cfg.Query)
}

func (s *Service) aggregate(ctx context.Context, ids []gmail.MessageID) (res Result, err error) {
	ctx, span := tracing.StartSpan(ctx, "collector.aggregate", attribute.Int("collector.messages", len(ids)))
	defer func() { tracing.EndSpan(span, err) }()

	return s.aggregator.Aggregate(ctx, ids, s.client.GetHeaders)
}

func (s *Service) persist(ctx context.Context, rec stats.Record) error {
	err := retry.RetryWithCallback(ctx, s.cfg.PersistRetry, func() error {
		return s.repo.Put(ctx, rec)
	}, func(attempt int, err error, next time.Duration) {
		metrics.RetryAttemptsTotal.WithLabelValues("repository", "put").Inc()
		s.logger.WarnwCtx(ctx, "Retrying record write", "attempt", attempt, "next_delay", next, "error", err)
	})
	if err != nil && !errs.IsPersistence(err) {
		err = errs.ErrPersistence.WithCause(err)
	}
	return err
}

func recordClassifications(res Result) {
	metrics.IncClassification(ReceivedHome.String(), res.Counters.ReceivedHome)
	metrics.IncClassification(ReceivedOther.String(), res.Counters.ReceivedOther)
	metrics.IncClassification(SentHome.String(), res.Counters.SentHome)
	metrics.IncClassification(SentOther.String(), res.Counters.SentOther)
	metrics.IncClassification(None.String(), res.Unclassified)
}

func cycleStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errs.IsProvider(err):
		return "provider_error"
	case errs.IsPersistence(err):
		return "persistence_error"
	case errs.IsConfiguration(err):
		return "configuration_error"
	default:
		return "error"
	}
}
