package stats

import (
	"context"
	"database/sql"
	"time"

	"emailstats/internal/constants"
	"emailstats/internal/window"
	errs "emailstats/pkg/errors"
	"emailstats/pkg/metrics"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Put(ctx context.Context, rec Record) (err error) {
	start := time.Now()
	defer func() { observe("put", start, err) }()

	query := `
		INSERT INTO email_stats (day, ts, received_home, received_other, sent_home, sent_other, cycle_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (day, ts) DO UPDATE SET
			received_home = EXCLUDED.received_home,
			received_other = EXCLUDED.received_other,
			sent_home = EXCLUDED.sent_home,
			sent_other = EXCLUDED.sent_other,
			cycle_id = EXCLUDED.cycle_id
	`

	_, err = r.db.ExecContext(ctx, query,
		rec.Day, rec.Timestamp.UTC(),
		rec.ReceivedHome, rec.ReceivedOther, rec.SentHome, rec.SentOther,
		rec.CycleID,
	)
	if err != nil {
		return errs.ErrPersistence.WithCause(err).WithDetail("operation", "put")
	}

	return nil
}

func (r *PostgresRepository) Query(ctx context.Context, w window.Window) (records []Record, err error) {
	start := time.Now()
	defer func() { observe("query", start, err) }()

	query := `
		SELECT day, ts, received_home, received_other, sent_home, sent_other, cycle_id
		FROM email_stats
		WHERE day = $1 AND ts >= $2 AND ts <= $3
		ORDER BY ts ASC
	`

	rows, err := r.db.QueryContext(ctx, query, w.Day, w.Start.UTC(), w.End.UTC())
	if err != nil {
		return nil, errs.ErrPersistence.WithCause(err).WithDetail("operation", "query")
	}
	defer rows.Close()

	records = make([]Record, 0)
	for rows.Next() {
		var (
			rec Record
			day time.Time
		)
		if err := rows.Scan(
			&day, &rec.Timestamp,
			&rec.ReceivedHome, &rec.ReceivedOther, &rec.SentHome, &rec.SentOther,
			&rec.CycleID,
		); err != nil {
			return nil, errs.ErrPersistence.WithCause(err).WithDetail("operation", "scan")
		}
		rec.Day = day.Format(constants.DayLayout)
		rec.Timestamp = rec.Timestamp.UTC()
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, errs.ErrPersistence.WithCause(err).WithDetail("operation", "query")
	}

	return records, nil
}

func observe(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ObserveDatabaseQuery(constants.StorageDriverPostgres, operation, status, time.Since(start))
}
