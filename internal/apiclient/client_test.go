package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/storefront/internal/models"
)

const productsBody = `{
	"total": 2,
	"items": [
		{"id": "p1", "title": "Frontend booster", "price": 750, "description": "", "image": "/5_Dots.svg", "category": "софт-скил"},
		{"id": "p2", "title": "Everything at once", "price": null, "description": "", "image": "/Asterisk_2.svg", "category": "другое"}
	]
}`

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(srv.URL+"/", "https://cdn.example.com/content", WithHTTPClient(srv.Client()), WithLogger(logger)), srv
}

func TestClient_ListProducts(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/products", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, productsBody)
	})

	products, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "p1", products[0].ID)
	assert.True(t, products[0].Price.Valid)
	assert.True(t, products[0].Price.Decimal.Equal(decimal.NewFromInt(750)))
	assert.Equal(t, "https://cdn.example.com/content/5_Dots.svg", products[0].Image)

	assert.False(t, products[1].Price.Valid, "null price stays null")
	assert.False(t, products[1].Purchasable())
}

func TestClient_ListProductsSharesConcurrentCalls(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = io.WriteString(w, productsBody)
	})

	var wg sync.WaitGroup
	results := make([][]models.Product, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			products, err := c.ListProducts(context.Background())
			assert.NoError(t, err)
			results[i] = products
		}(i)
	}

	// let the callers pile up on the in-flight request
	for hits.Load() == 0 {
		runtime.Gosched()
	}
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, hits.Load(), int32(5))
	for _, r := range results {
		assert.Len(t, r, 2)
	}
}

func TestClient_ListProductsSurvivesCallerCancel(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = io.WriteString(w, productsBody)
	})

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := c.ListProducts(ctx)
		first <- err
	}()
	for hits.Load() == 0 {
		runtime.Gosched()
	}

	second := make(chan []models.Product, 1)
	go func() {
		products, err := c.ListProducts(context.Background())
		assert.NoError(t, err)
		second <- products
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	err := <-first
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	select {
	case products := <-second:
		assert.Len(t, products, 2)
	case <-time.After(5 * time.Second):
		t.Fatal("second caller never returned")
	}
}

func TestClient_OptionsLeaveHTTPClientAlone(t *testing.T) {
	hc := &http.Client{Timeout: 3 * time.Second}

	New("http://api.test", "", WithHTTPClient(hc), WithTimeout(time.Second))
	assert.Equal(t, 3*time.Second, hc.Timeout)

	New("http://api.test", "", WithTimeout(time.Second), WithHTTPClient(hc))
	assert.Equal(t, 3*time.Second, hc.Timeout)
}

func TestClient_TimeoutAppliesToCustomHTTPClient(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "", WithHTTPClient(srv.Client()), WithTimeout(50*time.Millisecond),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	_, err := c.GetProduct(context.Background(), "p1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_GetProduct(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products/p1":
			_, _ = io.WriteString(w, `{"id":"p1","title":"Frontend booster","price":750,"image":"img.svg","category":"софт-скил"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"Product not found"}`)
		}
	})

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{name: "found", id: "p1"},
		{name: "missing", id: "p9", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := c.GetProduct(context.Background(), tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, http.StatusNotFound, apiErr.Status)
				assert.Equal(t, "Product not found", apiErr.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Frontend booster", p.Title)
			assert.Equal(t, "https://cdn.example.com/content/img.svg", p.Image)
		})
	}
}

func TestClient_PlaceOrder(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/order", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var order models.OrderRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&order))
		assert.Equal(t, []string{"p1"}, order.Items)
		assert.Equal(t, models.PaymentOnline, order.Payment)

		_, _ = io.WriteString(w, `{"id":"28c57cb4-3002-4445-8aa1-2a06a5055ae5","total":750}`)
	})

	resp, err := c.PlaceOrder(context.Background(), models.OrderRequest{
		Payment: models.PaymentOnline,
		Email:   "user@example.com",
		Phone:   "+71234567890",
		Address: "1 Main St",
		Total:   decimal.NewFromInt(750),
		Items:   []string{"p1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "28c57cb4-3002-4445-8aa1-2a06a5055ae5", resp.ID)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(750)))
}

func TestClient_PlaceOrderRejected(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"Total mismatch"}`)
	})

	_, err := c.PlaceOrder(context.Background(), models.OrderRequest{Items: []string{"p1"}})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Total mismatch", apiErr.Message)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	})

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := c.GetProduct(ctx, "p1")
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "boom", apiErr.Message)
	}

	_, err := c.GetProduct(ctx, "p1")
	require.Error(t, err)
	assert.Equal(t, int32(5), hits.Load(), "open breaker short-circuits the request")
}

func TestClient_NotFoundKeepsBreakerClosed(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 8; i++ {
		_, err := c.GetProduct(context.Background(), "p1")
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, int32(8), hits.Load())
}

func TestFakePlacer(t *testing.T) {
	order := models.OrderRequest{Total: decimal.NewFromInt(2250), Items: []string{"p1", "p2"}}

	a, err := FakePlacer{}.PlaceOrder(context.Background(), order)
	require.NoError(t, err)
	b, err := FakePlacer{}.PlaceOrder(context.Background(), order)
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, a.Total.Equal(order.Total))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = FakePlacer{}.PlaceOrder(ctx, order)
	assert.ErrorIs(t, err, context.Canceled)
}
