package gmail

import "context"

// Client is the narrow mailbox surface the collector needs.
type Client interface {
	List(ctx context.Context, q Query, pageToken string, pageSize int) (ListPage, error)
	// GetHeaders returns the From and To headers of a message in their original order.
	GetHeaders(ctx context.Context, id MessageID) ([]Header, error)
}
