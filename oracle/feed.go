package oracle

import (
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"
)

// Status captures the health classification assigned to an oracle quote.
type Status string

const (
	// StatusOK indicates the quote passed the configured freshness guard.
	StatusOK Status = "ok"
	// StatusStale signals the quote exceeded the configured freshness window.
	StatusStale Status = "stale"
)

// PriceDecimals is the decimal scale of every quote price: a price of
// 2000 USD is encoded as 2000 * 10^8.
const PriceDecimals = 8

var priceScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(PriceDecimals), nil)

// Quote captures a USD price observation together with the timestamp reported
// by the upstream source and the freshness classification applied by the feed.
type Quote struct {
	Price     *big.Int
	Timestamp time.Time
	Source    string
	Status    Status
}

// Clone returns a deep copy of the quote to prevent accidental mutations.
func (q Quote) Clone() Quote {
	clone := Quote{Timestamp: q.Timestamp, Source: q.Source, Status: q.Status}
	if q.Price != nil {
		clone.Price = new(big.Int).Set(q.Price)
	}
	return clone
}

// Fresh reports whether the quote is safe to consume: classified ok and
// carrying a positive price.
func (q Quote) Fresh() bool {
	return q.Status == StatusOK && q.Price != nil && q.Price.Sign() > 0
}

// Feed resolves the latest USD quote for a single asset.
type Feed interface {
	Latest() (Quote, error)
}

// FeedFunc adapts a plain function to the Feed interface.
type FeedFunc func() (Quote, error)

// Latest implements the Feed interface.
func (f FeedFunc) Latest() (Quote, error) { return f() }

// ParsePrice converts a decimal USD string (e.g. "2000.50") into the
// fixed-point integer representation used by quotes.
func ParsePrice(s string) (*big.Int, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, fmt.Errorf("oracle: price required")
	}
	rat, ok := new(big.Rat).SetString(trimmed)
	if !ok {
		return nil, fmt.Errorf("oracle: invalid price %q", s)
	}
	if rat.Sign() <= 0 {
		return nil, fmt.Errorf("oracle: price must be positive")
	}
	scaled := new(big.Rat).Mul(rat, new(big.Rat).SetInt(priceScale))
	return new(big.Int).Quo(scaled.Num(), scaled.Denom()), nil
}

// ManualFeed stores operator-supplied prices and applies a freshness window
// when serving them. It is safe for concurrent use.
type ManualFeed struct {
	mu       sync.RWMutex
	price    *big.Int
	observed time.Time
	maxAge   time.Duration
	source   string
	now      func() time.Time
}

// NewManualFeed constructs a manual feed. A zero maxAge disables the
// staleness classification.
func NewManualFeed(source string, maxAge time.Duration) *ManualFeed {
	name := strings.TrimSpace(source)
	if name == "" {
		name = "manual"
	}
	return &ManualFeed{maxAge: maxAge, source: name, now: time.Now}
}

// SetPrice records a new observation. Non-positive prices are rejected.
func (m *ManualFeed) SetPrice(price *big.Int, observed time.Time) error {
	if m == nil {
		return fmt.Errorf("oracle: manual feed not configured")
	}
	if price == nil || price.Sign() <= 0 {
		return fmt.Errorf("oracle: price must be positive")
	}
	m.mu.Lock()
	m.price = new(big.Int).Set(price)
	m.observed = observed
	m.mu.Unlock()
	return nil
}

// SetPriceString parses and records a decimal USD price.
func (m *ManualFeed) SetPriceString(price string, observed time.Time) error {
	parsed, err := ParsePrice(price)
	if err != nil {
		return err
	}
	return m.SetPrice(parsed, observed)
}

// Latest returns the stored observation classified against the freshness
// window.
func (m *ManualFeed) Latest() (Quote, error) {
	if m == nil {
		return Quote{}, fmt.Errorf("oracle: manual feed not configured")
	}
	m.mu.RLock()
	price := m.price
	observed := m.observed
	m.mu.RUnlock()
	if price == nil {
		return Quote{}, fmt.Errorf("oracle: no price observed")
	}
	quote := Quote{
		Price:     new(big.Int).Set(price),
		Timestamp: observed,
		Source:    m.source,
		Status:    StatusOK,
	}
	if m.maxAge > 0 {
		cutoff := m.now().Add(-m.maxAge)
		if observed.IsZero() || observed.Before(cutoff) {
			quote.Status = StatusStale
		}
	}
	return quote, nil
}
