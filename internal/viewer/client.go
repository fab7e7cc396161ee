package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"rivals-tracker/internal/config"
	"rivals-tracker/internal/constants"
	"rivals-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// Client is what the page needs from the network.
type Client interface {
	FetchPlayer(ctx context.Context, player string) (json.RawMessage, error)
	RequestUpdate(ctx context.Context, player string) error
}

// ProxyClient talks to the tracker's own proxy endpoints, never to the upstream directly.
type ProxyClient struct {
	baseURL string
	version string
	client  *fasthttp.Client
	logger  zerolog.Logger
}

func NewProxyClient(cfg *config.Config, logger zerolog.Logger) *ProxyClient {
	return &ProxyClient{
		baseURL: cfg.ProxyBaseURL,
		version: cfg.PublicAPIVersion,
		client: &fasthttp.Client{
			ReadTimeout:         constants.RequestTimeout,
			WriteTimeout:        constants.RequestTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

var _ Client = (*ProxyClient)(nil)

func (c *ProxyClient) playerPath(player string) string {
	return fmt.Sprintf("/api/%s/player/%s", c.version, url.PathEscape(player))
}

func (c *ProxyClient) get(ctx context.Context, path string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, constants.RequestTimeout)
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("proxy request failed")
		return nil, &domain.NetworkError{Op: "GET " + path, Err: err}
	}

	body := append([]byte(nil), resp.Body()...)
	status := resp.StatusCode()
	c.logger.Debug().Str("path", path).Int("status", status).Msg("proxy response")

	if status < 200 || status > 299 {
		return nil, &domain.UpstreamError{Status: status, Body: body}
	}
	if !json.Valid(body) {
		return nil, &domain.ParseError{Key: path, Err: fmt.Errorf("response is not JSON")}
	}
	return body, nil
}

func (c *ProxyClient) FetchPlayer(ctx context.Context, player string) (json.RawMessage, error) {
	return c.get(ctx, c.playerPath(player))
}

func (c *ProxyClient) RequestUpdate(ctx context.Context, player string) error {
	_, err := c.get(ctx, c.playerPath(player)+"/update")
	return err
}
