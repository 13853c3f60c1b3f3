package stats

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"emailstats/internal/logger"
	"emailstats/internal/window"
	errs "emailstats/pkg/errors"
	"emailstats/pkg/metrics"
	"emailstats/pkg/tracing"
)

type Service interface {
	// Query returns the records of day, narrowed to the hourly window when
	// hour is non-empty. Parameters are raw request values.
	Query(ctx context.Context, day, hour string) ([]Record, error)
}

type service struct {
	repo   Repository
	logger logger.Logger
}

func NewService(repo Repository, log logger.Logger) Service {
	return &service{repo: repo, logger: log}
}

func (s *service) Query(ctx context.Context, day, hour string) (records []Record, err error) {
	ctx, span := tracing.StartSpan(ctx, "stats.query",
		attribute.String("stats.day", day),
		attribute.String("stats.hour", hour),
	)
	defer func() {
		metrics.StatsQueriesTotal.WithLabelValues(queryStatus(err)).Inc()
		tracing.EndSpan(span, err)
	}()

	w, err := window.FromQuery(day, hour)
	if err != nil {
		return nil, err
	}

	records, err = s.repo.Query(ctx, w)
	if err != nil {
		if !errs.IsPersistence(err) {
			err = errs.ErrPersistence.WithCause(err)
		}
		s.logger.ErrorwCtx(ctx, "Failed to query stats", "day", w.Day, "start", w.Start, "end", w.End, "error", err)
		return nil, err
	}

	if records == nil {
		records = []Record{}
	}

	s.logger.DebugwCtx(ctx, "Stats queried", "day", w.Day, "start", w.Start, "end", w.End, "count", len(records))
	return records, nil
}

func queryStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errs.IsConfiguration(err), errs.IsValidation(err):
		return "rejected"
	default:
		return "error"
	}
}
