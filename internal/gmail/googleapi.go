package gmail

import (
	"context"
	"errors"
	"net/http"

	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"

	errs "emailstats/pkg/errors"
)

type googleClient struct {
	svc    *gmailapi.Service
	userID string
}

func NewGoogleAPIClient(svc *gmailapi.Service, userID string) Client {
	if userID == "" {
		userID = "me"
	}
	return &googleClient{svc: svc, userID: userID}
}

func (g *googleClient) List(ctx context.Context, q Query, pageToken string, pageSize int) (ListPage, error) {
	call := g.svc.Users.Messages.List(g.userID).Q(q.Raw)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	if pageSize > 0 {
		call = call.MaxResults(int64(pageSize))
	}

	res, err := call.Context(ctx).Do()
	if err != nil {
		return ListPage{}, providerError("list", err)
	}

	page := ListPage{NextPageToken: res.NextPageToken}
	for _, m := range res.Messages {
		page.IDs = append(page.IDs, MessageID(m.Id))
	}
	return page, nil
}

func (g *googleClient) GetHeaders(ctx context.Context, id MessageID) ([]Header, error) {
	msg, err := g.svc.Users.Messages.Get(g.userID, string(id)).
		Format("metadata").
		MetadataHeaders(HeaderFrom, HeaderTo).
		Context(ctx).
		Do()
	if err != nil {
		return nil, providerError("get", err).WithDetail("message_id", string(id))
	}

	if msg.Payload == nil {
		return nil, nil
	}

	headers := make([]Header, 0, len(msg.Payload.Headers))
	for _, h := range msg.Payload.Headers {
		headers = append(headers, Header{Name: h.Name, Value: h.Value})
	}
	return headers, nil
}

// providerError marks throttling, server and transport failures retryable.
// Other API rejections and context expiry are final.
func providerError(op string, err error) *errs.Error {
	appErr := errs.ErrProvider.WithCause(err).WithDetail("operation", op)

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return appErr.AsFatal()
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		appErr = appErr.WithDetail("status_code", apiErr.Code)
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
			return appErr.AsRetryable()
		}
		return appErr.AsFatal()
	}

	return appErr.AsRetryable()
}
