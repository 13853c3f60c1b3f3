package collector

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"emailstats/internal/constants"
	"emailstats/internal/gmail"
	"emailstats/internal/logger"
	"emailstats/internal/stats"
	errs "emailstats/pkg/errors"
	"emailstats/pkg/metrics"
)

// FetchFunc returns the headers of one message.
type FetchFunc func(ctx context.Context, id gmail.MessageID) ([]gmail.Header, error)

type AggregatorConfig struct {
	Concurrency  int
	FetchTimeout time.Duration
	// OnFetchError is "fail" to abort on the first failed fetch or "skip" to
	// drop that message and continue.
	OnFetchError string
}

// Result is the tally of one aggregation.
type Result struct {
	Counters     stats.Counters
	Classified   int
	Unclassified int
	Skipped      []gmail.MessageID
}

type Aggregator struct {
	classifier Classifier
	cfg        AggregatorConfig
	logger     logger.Logger
}

func NewAggregator(classifier Classifier, cfg AggregatorConfig, log logger.Logger) *Aggregator {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = constants.DefaultConcurrency
	}
	cfg.OnFetchError = strings.ToLower(strings.TrimSpace(cfg.OnFetchError))
	if cfg.OnFetchError == "" {
		cfg.OnFetchError = constants.OnFetchErrorFail
	}
	return &Aggregator{classifier: classifier, cfg: cfg, logger: log}
}

// Aggregate fetches and classifies every id with at most Concurrency fetches
// in flight. Counts do not depend on completion order.
func (a *Aggregator) Aggregate(ctx context.Context, ids []gmail.MessageID, fetch FetchFunc) (Result, error) {
	classes := make([]Classification, len(ids))
	failed := make([]bool, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Concurrency)

	for i, id := range ids {
		if gctx.Err() != nil {
			break
		}
		i, id := i, id
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = errs.RecoverPanic(r)
				}
			}()

			if err := gctx.Err(); err != nil {
				return errs.Wrap(err, errs.ErrProvider.WithMessage("aggregation interrupted"))
			}

			metrics.CollectorInFlightFetches.Inc()
			defer metrics.CollectorInFlightFetches.Dec()

			headers, err := a.fetchOne(gctx, id, fetch)
			if err != nil {
				return a.onFetchError(ctx, id, err, &failed[i])
			}

			classes[i] = a.classifier.Classify(headers)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var appErr *errs.Error
		if !errors.As(err, &appErr) {
			err = errs.Wrap(err, errs.ErrProvider.WithMessage("aggregation interrupted"))
		}
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, errs.ErrProvider.WithCause(err).WithMessage("aggregation interrupted")
	}

	return a.reduce(ids, classes, failed), nil
}

func (a *Aggregator) fetchOne(ctx context.Context, id gmail.MessageID, fetch FetchFunc) ([]gmail.Header, error) {
	if a.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.FetchTimeout)
		defer cancel()
	}
	return fetch(ctx, id)
}

func (a *Aggregator) onFetchError(ctx context.Context, id gmail.MessageID, err error, failed *bool) error {
	metrics.CollectorFetchFailuresTotal.Inc()

	var appErr *errs.Error
	if !errors.As(err, &appErr) || !errs.IsProvider(appErr) {
		appErr = errs.ErrProvider.WithCause(err).WithDetail("operation", "get")
	}
	err = appErr.WithDetail("message_id", string(id))

	// The cycle itself ending is never skippable.
	if a.cfg.OnFetchError == constants.OnFetchErrorSkip && ctx.Err() == nil {
		*failed = true
		a.logger.WarnwCtx(ctx, "Skipping message after failed fetch", "message_id", string(id), "error", err)
		return nil
	}
	return err
}

func (a *Aggregator) reduce(ids []gmail.MessageID, classes []Classification, failed []bool) Result {
	var res Result
	for i, class := range classes {
		if failed[i] {
			res.Skipped = append(res.Skipped, ids[i])
			continue
		}
		switch class {
		case ReceivedHome:
			res.Counters.ReceivedHome++
		case ReceivedOther:
			res.Counters.ReceivedOther++
		case SentHome:
			res.Counters.SentHome++
		case SentOther:
			res.Counters.SentOther++
		default:
			res.Unclassified++
			continue
		}
		res.Classified++
	}
	return res
}
