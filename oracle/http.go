package oracle

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// HTTPDoer abstracts http.Client for ease of testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPFeed adapts a JSON spot-price endpoint to the Feed interface. The
// endpoint is expected to answer GET requests carrying a "symbol" query
// parameter with a body of the form {"price": "2000.50", "timestamp": 1700000000}.
type HTTPFeed struct {
	client   HTTPDoer
	endpoint string
	symbol   string
	maxAge   time.Duration

	mu       sync.Mutex
	cached   Quote
	fetched  time.Time
	cacheTTL time.Duration

	now func() time.Time
}

// NewHTTPFeed constructs an HTTP feed for the given asset symbol. When the
// client is nil http.DefaultClient is used. cacheTTL bounds how often the
// upstream endpoint is consulted; maxAge drives the staleness classification
// of the reported observation timestamp.
func NewHTTPFeed(client HTTPDoer, endpoint, symbol string, maxAge, cacheTTL time.Duration) (*HTTPFeed, error) {
	ep := strings.TrimSpace(endpoint)
	if ep == "" {
		return nil, fmt.Errorf("oracle: endpoint required")
	}
	if _, err := url.Parse(ep); err != nil {
		return nil, fmt.Errorf("oracle: invalid endpoint: %w", err)
	}
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return nil, fmt.Errorf("oracle: symbol required")
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFeed{
		client:   client,
		endpoint: ep,
		symbol:   sym,
		maxAge:   maxAge,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}, nil
}

// Latest fetches (or serves from cache) the upstream quote and classifies its
// freshness.
func (f *HTTPFeed) Latest() (Quote, error) {
	if f == nil {
		return Quote{}, fmt.Errorf("oracle: http feed not configured")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	if f.cached.Price != nil && f.cacheTTL > 0 && now.Sub(f.fetched) < f.cacheTTL {
		return f.classify(f.cached.Clone(), now), nil
	}

	quote, err := f.fetch()
	if err != nil {
		return Quote{}, err
	}
	f.cached = quote.Clone()
	f.fetched = now
	return f.classify(quote, now), nil
}

func (f *HTTPFeed) classify(quote Quote, now time.Time) Quote {
	quote.Status = StatusOK
	if f.maxAge > 0 {
		cutoff := now.Add(-f.maxAge)
		if quote.Timestamp.IsZero() || quote.Timestamp.Before(cutoff) {
			quote.Status = StatusStale
		}
	}
	return quote
}

func (f *HTTPFeed) fetch() (Quote, error) {
	req, err := http.NewRequest(http.MethodGet, f.endpoint, nil)
	if err != nil {
		return Quote{}, err
	}
	values := url.Values{}
	values.Set("symbol", f.symbol)
	req.URL.RawQuery = values.Encode()

	resp, err := f.client.Do(req)
	if err != nil {
		return Quote{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Quote{}, fmt.Errorf("oracle: http feed status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Price     string `json:"price"`
		Timestamp int64  `json:"timestamp"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Quote{}, fmt.Errorf("oracle: http feed decode: %w", err)
	}
	price, err := ParsePrice(payload.Price)
	if err != nil {
		return Quote{}, err
	}
	quote := Quote{
		Price:  price,
		Source: f.endpoint,
	}
	if payload.Timestamp > 0 {
		quote.Timestamp = time.Unix(payload.Timestamp, 0)
	}
	return quote, nil
}
