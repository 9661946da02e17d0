package notify

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const contentTypeJSON = "application/json"

// Result describes a completed forwarding call.
type Result struct {
	StatusCode int
}

// Client publishes messages to a single ntfy endpoint.
type Client struct {
	url    string
	client *resty.Client
	logger *zap.Logger
}

// NewClient returns a Client posting to url. No timeout or retries are configured
// and no authentication headers are sent.
func NewClient(url string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	cli := resty.New().
		SetLogger(logger.Sugar()).
		SetRetryCount(0)

	return &Client{
		url:    url,
		client: cli,
		logger: logger,
	}
}

// URL returns the destination endpoint.
func (c *Client) URL() string {
	return c.url
}

// Forward sends body as the raw request body of a single POST. An error is
// returned only when the call could not complete; any HTTP status counts as
// completed.
func (c *Client) Forward(ctx context.Context, body []byte) (*Result, error) {
	c.logger.Debug("sending to ntfy", zap.String("url", c.url), zap.ByteString("body", body))

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentTypeJSON).
		SetBody(body).
		Post(c.url)
	if err != nil {
		return nil, fmt.Errorf("post to %s: %w", c.url, err)
	}

	return &Result{StatusCode: resp.StatusCode()}, nil
}
