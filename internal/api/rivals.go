package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"rivals-tracker/internal/config"
	"rivals-tracker/internal/constants"
	"rivals-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

type RivalsClient struct {
	apiKey      string
	version     string
	baseURL     string
	client      *fasthttp.Client
	logger      zerolog.Logger
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`

	// seconds until reset
	Reset int `json:"reset"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Response is an upstream reply kept verbatim for passthrough.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

type ForwardOptions struct {
	NoStore bool
}

func NewRivalsClient(cfg *config.Config, logger zerolog.Logger) *RivalsClient {
	return &RivalsClient{
		apiKey:  cfg.APIKey,
		version: cfg.APIVersion,
		baseURL: cfg.UpstreamBaseURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     50,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

func (c *RivalsClient) Version() string { return c.version }

func (c *RivalsClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *RivalsClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	seen := false
	if limit := string(resp.Header.Peek("X-Ratelimit-Limit")); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			c.rateLimit.Limit = val
			seen = true
		}
	}
	if remaining := string(resp.Header.Peek("X-Ratelimit-Remaining")); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimit.Remaining = val
			seen = true
		}
	}
	if reset := string(resp.Header.Peek("X-Ratelimit-Reset")); reset != "" {
		if val, err := strconv.Atoi(reset); err == nil {
			c.rateLimit.Reset = val
			seen = true
		}
	}
	if seen {
		c.rateLimit.UpdatedAt = time.Now()
	}
}

func (c *RivalsClient) PlayerPath(player string) string {
	return fmt.Sprintf("%s/player/%s", c.version, url.PathEscape(player))
}

func (c *RivalsClient) MatchHistoryPath(player string) string {
	return c.PlayerPath(player) + "/match-history"
}

func (c *RivalsClient) UpdatePath(player string) string {
	return c.PlayerPath(player) + "/update"
}

func (c *RivalsClient) HeroesPath() string {
	return c.version + "/heroes"
}

// Forward performs a GET against the upstream and returns whatever it answered.
// Only a missing key or a transport failure is an error; non-2xx statuses are returned as is.
func (c *RivalsClient) Forward(ctx context.Context, path string, opts ForwardOptions) (*Response, error) {
	if c.apiKey == "" {
		return nil, domain.ErrAPIKeyMissing
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/" + path)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(constants.APIKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if opts.NoStore {
		req.Header.Set("Cache-Control", "no-store")
	}

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, constants.ExternalAPITimeout)
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("upstream request failed")
		return nil, &domain.NetworkError{Op: "GET " + path, Err: err}
	}

	c.updateRateLimit(resp)

	out := &Response{
		Status:      resp.StatusCode(),
		ContentType: string(resp.Header.ContentType()),
		Body:        append([]byte(nil), resp.Body()...),
	}

	c.logger.Debug().
		Str("path", path).
		Int("status", out.Status).
		Int("bytes", len(out.Body)).
		Dur("duration", time.Since(start)).
		Msg("upstream response")

	return out, nil
}

func doRequest[T any](ctx context.Context, client *RivalsClient, path string, opts ForwardOptions) (*T, error) {
	resp, err := client.Forward(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	if resp.Status < 200 || resp.Status > 299 {
		return nil, &domain.UpstreamError{Status: resp.Status, Body: resp.Body}
	}

	var result T
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, &domain.ParseError{Key: path, Err: err}
	}
	return &result, nil
}

func (c *RivalsClient) GetPlayer(ctx context.Context, player string) (*PlayerResponse, error) {
	return doRequest[PlayerResponse](ctx, c, c.PlayerPath(player), ForwardOptions{NoStore: true})
}

func (c *RivalsClient) GetMatchHistory(ctx context.Context, player string) (*MatchHistoryResponse, error) {
	return doRequest[MatchHistoryResponse](ctx, c, c.MatchHistoryPath(player), ForwardOptions{NoStore: true})
}
