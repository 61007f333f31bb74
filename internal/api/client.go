package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Mereki/three-point-predictor/internal/constants"
	"github.com/Mereki/three-point-predictor/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

var ErrNotFound = errors.New("resource not found")

// StatusError is returned for any non-200 response.
type StatusError struct {
	Provider string
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: API error: %d", e.Provider, e.Endpoint, e.Code)
}

// httpClient is the transport shared by the provider clients: one fasthttp
// client, a pacing limiter and a circuit breaker per provider.
type httpClient struct {
	provider string
	baseURL  string
	headers  map[string]string
	client   *fasthttp.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	logger   zerolog.Logger
}

func newHTTPClient(provider, baseURL string, headers map[string]string, interval time.Duration, logger zerolog.Logger) *httpClient {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	log := logger.With().Str("provider", provider).Logger()
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        provider,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			var se *StatusError
			return err == nil || errors.Is(err, ErrNotFound) || (errors.As(err, &se) && se.Code < 500)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("from_state", from.String()).
				Str("to_state", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	return &httpClient{
		provider: provider,
		baseURL:  baseURL,
		headers:  headers,
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		limiter: rate.NewLimiter(limit, 1),
		breaker: breaker,
		logger:  log,
	}
}

func doRequest[T any](ctx context.Context, c *httpClient, endpoint string, params map[string]string) (*T, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	label := endpoint[strings.LastIndex(endpoint, "/")+1:]
	start := time.Now()
	body, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, endpoint, params)
	})
	metrics.ProviderRequestDuration.WithLabelValues(c.provider, label).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderRequestErrors.WithLabelValues(c.provider, label).Inc()
		c.logger.Debug().Err(err).Str("endpoint", endpoint).Msg("provider request failed")
		return nil, err
	}

	var result T
	if err := json.Unmarshal(body.([]byte), &result); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return &result, nil
}

func (c *httpClient) fetch(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/" + endpoint)
	args := req.URI().QueryArgs()
	for k, v := range params {
		args.Add(k, v)
	}
	req.Header.SetMethod(fasthttp.MethodGet)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := c.client.DoTimeout(req, resp, constants.ExternalAPITimeout); err != nil {
			return nil, err
		}
	}

	switch resp.StatusCode() {
	case fasthttp.StatusOK:
	case fasthttp.StatusNotFound:
		return nil, fmt.Errorf("%s %s: %w", c.provider, endpoint, ErrNotFound)
	default:
		return nil, &StatusError{Provider: c.provider, Endpoint: endpoint, Code: resp.StatusCode()}
	}

	// the response buffer is released on return
	return append([]byte(nil), resp.Body()...), nil
}
