package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	apierrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/handler"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
	"github.com/kbukum/apikit/request"
	"github.com/kbukum/apikit/resilience"
	"github.com/kbukum/apikit/resource"
	"github.com/kbukum/apikit/version"
)

// Client is the shared context for outbound calls. It is safe for
// concurrent use.
type Client struct {
	config   Config
	http     *http.Client
	gate     resilience.Gate
	registry *resource.Registry
	log      *logger.Logger
	prom     *observability.PromCollector
	metrics  *observability.Metrics
	tracer   trace.Tracer
	extra    []handler.Decorator
	breaker  *resilience.CircuitBreaker
	handler  handler.Handler
}

// Option customises a Client.
type Option func(*Client)

// WithRegistry sets the registry used to resolve templates. Defaults to
// resource.Default().
func WithRegistry(reg *resource.Registry) Option {
	return func(c *Client) { c.registry = reg }
}

// WithLogger sets the client logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithGate replaces the gate built from Config.RateLimit.
func WithGate(g resilience.Gate) Option {
	return func(c *Client) { c.gate = g }
}

// WithHTTPClient replaces the underlying http.Client. Config.Timeout, TLS and
// CookieJar are not applied to it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithPrometheus records sends on collector.
func WithPrometheus(collector *observability.PromCollector) Option {
	return func(c *Client) { c.prom = collector }
}

// WithMetrics records sends on OpenTelemetry instruments.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracer enables a span per physical send.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithDecorators adds decorators to the default stack, outside retries.
func WithDecorators(d ...handler.Decorator) Option {
	return func(c *Client) { c.extra = append(c.extra, d...) }
}

// New creates a Client from cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{config: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get("client")
	}
	if c.registry == nil {
		c.registry = resource.Default()
	}
	if c.http == nil {
		hc, err := newHTTPClient(cfg)
		if err != nil {
			return nil, err
		}
		c.http = hc
	}
	if c.gate == nil {
		c.gate = newGate(cfg.RateLimit, c.log)
	}
	c.handler = c.buildHandler()

	c.log.Debug("client created", logger.Fields(
		"base_url", cfg.BaseURL,
		"retries", cfg.Retries,
		"rate_limited", cfg.RateLimit != nil,
	))
	return c, nil
}

func newHTTPClient(cfg Config) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, apierrors.Wrap(apierrors.KindInvalidConfig, "tls", err)
	}
	if tlsCfg != nil {
		transport.TLSClientConfig = tlsCfg
	}

	hc := &http.Client{Transport: transport, Timeout: cfg.Timeout}
	if cfg.CookieJar {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, apierrors.Wrap(apierrors.KindInvalidConfig, "cookie jar", err)
		}
		hc.Jar = jar
	}
	return hc, nil
}

func newGate(cfg *RateLimitConfig, log *logger.Logger) resilience.Gate {
	if cfg == nil {
		return resilience.Unlimited()
	}
	if cfg.Strategy == StrategyReservation {
		return resilience.NewLimiterGate(rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst))
	}
	return resilience.NewRateLimiter(resilience.RateLimiterConfig{
		Name:  "client",
		Rate:  cfg.Rate,
		Burst: cfg.Burst,
		OnWait: func(name string, wait time.Duration) {
			log.Debug("waiting for send permit", logger.MergeWithDuration(logger.Fields("limiter", name), wait))
		},
	})
}

// buildHandler assembles the default stack, innermost first: transport,
// metrics, tracing, status rejection, circuit breaker, concurrency, logging,
// caller decorators, retries.
func (c *Client) buildHandler() handler.Handler {
	cfg := c.config
	decorators := []handler.Decorator{}

	if c.prom != nil || c.metrics != nil {
		decorators = append(decorators, handler.Metrics(c.prom, c.metrics))
	}
	if c.tracer != nil {
		decorators = append(decorators, handler.Tracing(c.tracer))
	}
	if cfg.RetryServerErrors {
		decorators = append(decorators, handler.RejectStatus(handler.ServerErrors))
	}
	if cb := cfg.CircuitBreaker; cb != nil {
		cbCfg := resilience.DefaultCircuitBreakerConfig("client")
		if cb.MaxFailures > 0 {
			cbCfg.MaxFailures = cb.MaxFailures
		}
		if cb.Timeout > 0 {
			cbCfg.Timeout = cb.Timeout
		}
		// A caller giving up says nothing about the remote's health.
		cbCfg.IsFailure = func(err error) bool { return !errors.Is(err, context.Canceled) }
		cbCfg.OnStateChange = func(name string, from, to resilience.State) {
			c.log.Warn("circuit breaker state changed", logger.Fields("breaker", name, "from", from.String(), "to", to.String()))
		}
		c.breaker = resilience.NewCircuitBreaker(cbCfg)
		decorators = append(decorators, handler.CircuitBreaker(c.breaker))
	}
	if cfg.MaxConcurrent > 0 {
		decorators = append(decorators, handler.Concurrency(resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          "client",
			MaxConcurrent: cfg.MaxConcurrent,
			MaxWait:       cfg.Timeout,
		})))
	}
	decorators = append(decorators, handler.Logging(c.log))
	decorators = append(decorators, c.extra...)
	if cfg.Retries > 1 {
		decorators = append(decorators, handler.RetriesOf(cfg.Retries,
			handler.WithRetryLogger(c.log),
			handler.WithOnRetry(func(req *request.Request, attempt int, _ error) {
				c.prom.Retry(req.Method(), req.URL().Host, attempt)
			}),
		))
	}

	return handler.Wrap(handler.Transport(c.http, c.gate), decorators...)
}

// Config returns the effective configuration.
func (c *Client) Config() Config { return c.config }

// HTTP returns the underlying http.Client.
func (c *Client) HTTP() *http.Client { return c.http }

// Gate returns the shared permit gate.
func (c *Client) Gate() resilience.Gate { return c.gate }

// Registry returns the registry used to resolve templates.
func (c *Client) Registry() *resource.Registry { return c.registry }

// Logger returns the client logger.
func (c *Client) Logger() *logger.Logger { return c.log }

// Handler returns the default handler stack.
func (c *Client) Handler() handler.Handler { return c.handler }

// Tracer returns the tracer set with WithTracer, or nil.
func (c *Client) Tracer() trace.Tracer { return c.tracer }

// Metrics returns the OpenTelemetry instruments set with WithMetrics, or nil.
func (c *Client) Metrics() *observability.Metrics { return c.metrics }

// Transport returns a bare handler that sends through the client's
// http.Client and gate, without the default decorators.
func (c *Client) Transport() handler.Handler { return handler.Transport(c.http, c.gate) }

// NewRequest starts a builder with the client's default headers. A relative
// rawURL is resolved against Config.BaseURL.
func (c *Client) NewRequest(method, rawURL string) *request.Builder {
	if c.config.BaseURL != "" {
		if base, err := url.Parse(c.config.BaseURL); err == nil {
			if ref, err := url.Parse(rawURL); err == nil && !ref.IsAbs() {
				rawURL = base.ResolveReference(ref).String()
			}
		}
	}
	b := request.NewBuilder(method, rawURL)
	c.ApplyDefaults(b)
	return b
}

// ApplyDefaults sets the configured default headers and User-Agent on b.
// Without a configured User-Agent the apikit version is sent.
func (c *Client) ApplyDefaults(b *request.Builder) {
	for k, v := range c.config.Headers {
		b.SetHeader(k, v)
	}
	ua := c.config.UserAgent
	if ua == "" {
		ua = version.UserAgent("")
	}
	b.SetHeader("User-Agent", ua)
}

// Send executes req through the default handler stack.
func (c *Client) Send(ctx context.Context, req *request.Request) (*http.Response, error) {
	return c.handler.Execute(ctx, req)
}

// Prepare returns a Runner that builds b and sends it through the default
// handler stack.
func (c *Client) Prepare(b *request.Builder) *Runner {
	return &Runner{builder: b, handler: c.handler}
}
