package provider

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/stoik/mailhub/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/gmail/v1"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

const me = "me"

// Client is a provider handle bound to a single credential. It is built per
// call and never shared between requests or accounts.
type Client struct {
	Gmail    *gmail.Service
	Userinfo *oauth2api.Service
}

// ClientFactory builds a Client scoped to cred.
type ClientFactory func(ctx context.Context, cred models.Credential) (*Client, error)

// Options configures the Google client factory.
type Options struct {
	// Endpoint overrides the API base URL for both Gmail and userinfo.
	// Empty means the production Google endpoints.
	Endpoint string
	Timeout  time.Duration
	// HTTPClient is the base client; its transport carries every request.
	HTTPClient *http.Client
}

// NewClientFactory returns a factory that wraps each credential in a static
// token source. Tokens are sent as stored; expiry is left to the provider.
func NewClientFactory(opts Options) ClientFactory {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	base := opts.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	endpoint := opts.Endpoint
	if endpoint != "" && !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}

	return func(ctx context.Context, cred models.Credential) (*Client, error) {
		tok := &oauth2.Token{AccessToken: cred.AccessToken, TokenType: cred.TokenType}
		baseCtx := context.WithValue(ctx, oauth2.HTTPClient, base)
		httpClient := oauth2.NewClient(baseCtx, oauth2.StaticTokenSource(tok))
		httpClient.Timeout = opts.Timeout

		clientOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
		if endpoint != "" {
			clientOpts = append(clientOpts, option.WithEndpoint(endpoint))
		}

		gsvc, err := gmail.NewService(ctx, clientOpts...)
		if err != nil {
			return nil, err
		}
		usvc, err := oauth2api.NewService(ctx, clientOpts...)
		if err != nil {
			return nil, err
		}
		return &Client{Gmail: gsvc, Userinfo: usvc}, nil
	}
}

// GoogleProvider implements Provider against Gmail v1 and OAuth2 userinfo v2.
type GoogleProvider struct {
	newClient ClientFactory
}

// NewGoogleProvider creates a provider using the given client factory.
func NewGoogleProvider(factory ClientFactory) *GoogleProvider {
	return &GoogleProvider{newClient: factory}
}

func (g *GoogleProvider) client(ctx context.Context, op string, cred models.Credential) (*Client, error) {
	c, err := g.newClient(ctx, cred)
	if err != nil {
		return nil, Classify(op, err)
	}
	return c, nil
}

// FetchProfile implements Provider.FetchProfile.
func (g *GoogleProvider) FetchProfile(ctx context.Context, cred models.Credential) (string, models.Profile, error) {
	const op = "fetch profile"
	c, err := g.client(ctx, op, cred)
	if err != nil {
		return "", models.Profile{}, err
	}

	info, err := c.Userinfo.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return "", models.Profile{}, Classify(op, err)
	}
	return info.Id, models.Profile{
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}

// ListMessages implements Provider.ListMessages. The per-message fetches are
// all started before any is awaited; one failure fails the listing.
func (g *GoogleProvider) ListMessages(ctx context.Context, cred models.Credential, limit int64) ([]*gmail.Message, error) {
	const op = "list messages"
	if limit <= 0 {
		limit = DefaultPageSize
	}
	c, err := g.client(ctx, op, cred)
	if err != nil {
		return nil, err
	}

	resp, err := c.Gmail.Users.Messages.List(me).MaxResults(limit).Context(ctx).Do()
	if err != nil {
		return nil, Classify(op, err)
	}

	messages := make([]*gmail.Message, len(resp.Messages))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, ref := range resp.Messages {
		i := i
		id := ref.Id
		eg.Go(func() error {
			msg, err := getMessage(egCtx, c, id, FormatMetadata)
			if err != nil {
				return err
			}
			messages[i] = msg
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, Classify(op, err)
	}
	return messages, nil
}

// GetMessage implements Provider.GetMessage.
func (g *GoogleProvider) GetMessage(ctx context.Context, cred models.Credential, id string, format Format) (*gmail.Message, error) {
	const op = "get message"
	c, err := g.client(ctx, op, cred)
	if err != nil {
		return nil, err
	}
	msg, err := getMessage(ctx, c, id, format)
	if err != nil {
		return nil, Classify(op, err)
	}
	return msg, nil
}

func getMessage(ctx context.Context, c *Client, id string, format Format) (*gmail.Message, error) {
	call := c.Gmail.Users.Messages.Get(me, id).Format(string(format))
	if format == FormatMetadata {
		call = call.MetadataHeaders(SummaryHeaders...)
	}
	return call.Context(ctx).Do()
}

// GetThread implements Provider.GetThread.
func (g *GoogleProvider) GetThread(ctx context.Context, cred models.Credential, threadID string) (*gmail.Thread, error) {
	const op = "get thread"
	c, err := g.client(ctx, op, cred)
	if err != nil {
		return nil, err
	}
	thread, err := c.Gmail.Users.Threads.Get(me, threadID).
		Format(string(FormatMetadata)).
		MetadataHeaders(SummaryHeaders...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, Classify(op, err)
	}
	return thread, nil
}
