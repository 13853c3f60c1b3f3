package collector

import (
	"context"

	"emailstats/internal/gmail"
	"emailstats/internal/logger"
	errs "emailstats/pkg/errors"
)

type Enumerator struct {
	client   gmail.Client
	pageSize int
	logger   logger.Logger
}

func NewEnumerator(client gmail.Client, pageSize int, log logger.Logger) *Enumerator {
	return &Enumerator{client: client, pageSize: pageSize, logger: log}
}

// Enumerate follows page tokens until the provider returns an empty page or
// no further token. Any list failure aborts the whole enumeration.
func (e *Enumerator) Enumerate(ctx context.Context, query string) ([]gmail.MessageID, error) {
	if query == "" {
		return nil, errs.ErrConfiguration.WithMessage("No query specified for message enumeration")
	}

	var (
		ids    []gmail.MessageID
		cursor string
		pages  int
	)
	for {
		page, err := e.client.List(ctx, gmail.Query{Raw: query}, cursor, e.pageSize)
		if err != nil {
			if !errs.IsProvider(err) {
				err = errs.ErrProvider.WithCause(err).WithDetail("operation", "list")
			}
			return nil, err
		}
		pages++

		if len(page.IDs) == 0 {
			break
		}
		ids = append(ids, page.IDs...)

		cursor = page.NextPageToken
		if cursor == "" {
			break
		}
	}

	e.logger.DebugwCtx(ctx, "Enumeration finished", "query", query, "pages", pages, "messages", len(ids))
	return ids, nil
}
