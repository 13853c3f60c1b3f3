package gmail

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	errs "emailstats/pkg/errors"
)

// NewService builds a read-only Gmail service from an OAuth client secret file
// and a previously authorized token file. Token acquisition is not performed here.
func NewService(ctx context.Context, credentialsFile, tokenFile string, opts ...option.ClientOption) (*gmailapi.Service, error) {
	secret, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, errs.ErrConfiguration.WithCause(err).
			WithMessage(fmt.Sprintf("unable to read gmail credentials file %s", credentialsFile))
	}

	conf, err := google.ConfigFromJSON(secret, gmailapi.GmailReadonlyScope)
	if err != nil {
		return nil, errs.ErrConfiguration.WithCause(err).
			WithMessage(fmt.Sprintf("unable to parse gmail credentials file %s", credentialsFile))
	}

	tok, err := loadToken(tokenFile)
	if err != nil {
		return nil, errs.ErrConfiguration.WithCause(err).
			WithMessage(fmt.Sprintf("unable to read gmail token file %s", tokenFile))
	}

	opts = append([]option.ClientOption{option.WithTokenSource(conf.TokenSource(ctx, tok))}, opts...)
	svc, err := gmailapi.NewService(ctx, opts...)
	if err != nil {
		return nil, errs.ErrConfiguration.WithCause(err).WithMessage("unable to create gmail service")
	}
	return svc, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, fmt.Errorf("token file %s holds neither an access nor a refresh token", path)
	}
	return tok, nil
}
