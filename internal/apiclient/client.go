// Package apiclient talks to the storefront API: the product list, single
// products and order placement.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"

	"github.com/Lixing-Zhang/storefront/internal/models"
)

// DefaultTimeout bounds each request, whichever HTTP client carries it
const DefaultTimeout = 15 * time.Second

var (
	// ErrNotFound is returned when the API answers 404
	ErrNotFound = errors.New("not found")
)

// APIError is a non-2xx answer from the API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// Is lets a 404 match ErrNotFound
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client.
// The client is used as is and never modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout. Zero or less disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for breaker state changes
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client is the storefront API client. Product images are resolved against
// the CDN base before they are returned.
type Client struct {
	baseURL string
	cdnURL  string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger

	breaker *gobreaker.CircuitBreaker[[]byte]
	group   singleflight.Group
}

// New creates a client for the API at baseURL
func New(baseURL, cdnURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		cdnURL:  cdnURL,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "storefront-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// the API answering with a client error is still a healthy API
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.Status < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

// ListProducts fetches the catalog. Concurrent calls share one request,
// which outlives any single caller giving up; each caller still returns
// as soon as its own ctx is done.
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan("products", func() (any, error) {
		var list models.ProductList
		if err := c.do(shared, http.MethodGet, "/products", nil, &list); err != nil {
			return nil, errors.Wrap(err, "list products")
		}
		products := make([]models.Product, len(list.Items))
		for i, p := range list.Items {
			products[i] = p.WithImageBase(c.cdnURL)
		}
		return products, nil
	})

	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "list products")
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]models.Product)), nil
	}
}

// GetProduct fetches one product. An unknown id matches ErrNotFound.
func (c *Client) GetProduct(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, &p); err != nil {
		return models.Product{}, errors.Wrapf(err, "get product %q", id)
	}
	return p.WithImageBase(c.cdnURL), nil
}

// PlaceOrder posts the order and returns the API's confirmation
func (c *Client) PlaceOrder(ctx context.Context, order models.OrderRequest) (models.OrderResponse, error) {
	var resp models.OrderResponse
	if err := c.do(ctx, http.MethodPost, "/order", order, &resp); err != nil {
		return models.OrderResponse{}, errors.Wrap(err, "place order")
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(data)
	}

	data, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return nil, errors.Wrap(err, "build request")
		}
		req.Header.Set("Accept", "application/json")
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.Wrap(err, "read response")
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, decodeError(resp.StatusCode, data)
		}
		return data, nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

// decodeError reads the {"error": "..."} body the API answers failures with
func decodeError(status int, data []byte) error {
	var body models.ErrorResponse
	msg := strings.TrimSpace(string(data))
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		msg = body.Error
	}
	return &APIError{Status: status, Message: msg}
}
