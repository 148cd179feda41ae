package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type StableMetrics struct {
	deposits     *prometheus.CounterVec
	redemptions  *prometheus.CounterVec
	mints        prometheus.Counter
	burns        prometheus.Counter
	liquidations *prometheus.CounterVec
	supply       prometheus.Gauge
}

var (
	stableOnce     sync.Once
	stableRegistry *StableMetrics
)

// Stable returns the lazily-initialised metrics registry tracking engine
// activity.
func Stable() *StableMetrics {
	stableOnce.Do(func() {
		stableRegistry = &StableMetrics{
			deposits: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "stablecore",
				Subsystem: "engine",
				Name:      "deposits_total",
				Help:      "Count of collateral deposits segmented by asset.",
			}, []string{"asset"}),
			redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "stablecore",
				Subsystem: "engine",
				Name:      "redemptions_total",
				Help:      "Count of collateral redemptions segmented by asset.",
			}, []string{"asset"}),
			mints: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "stablecore",
				Subsystem: "engine",
				Name:      "mints_total",
				Help:      "Count of successful stable unit mints.",
			}),
			burns: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "stablecore",
				Subsystem: "engine",
				Name:      "burns_total",
				Help:      "Count of successful stable unit burns.",
			}),
			liquidations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "stablecore",
				Subsystem: "engine",
				Name:      "liquidations_total",
				Help:      "Count of liquidations segmented by seized asset.",
			}, []string{"asset"}),
			supply: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "stablecore",
				Subsystem: "token",
				Name:      "stable_supply",
				Help:      "Current total supply of the stable unit.",
			}),
		}
		prometheus.MustRegister(
			stableRegistry.deposits,
			stableRegistry.redemptions,
			stableRegistry.mints,
			stableRegistry.burns,
			stableRegistry.liquidations,
			stableRegistry.supply,
		)
	})
	return stableRegistry
}

func normalizeAsset(asset string) string {
	normalized := strings.TrimSpace(strings.ToUpper(asset))
	if normalized == "" {
		return "UNKNOWN"
	}
	return normalized
}

// RecordDeposit increments the deposit counter for the supplied asset.
func (m *StableMetrics) RecordDeposit(asset string) {
	if m == nil {
		return
	}
	m.deposits.WithLabelValues(normalizeAsset(asset)).Inc()
}

// RecordRedemption increments the redemption counter for the supplied asset.
func (m *StableMetrics) RecordRedemption(asset string) {
	if m == nil {
		return
	}
	m.redemptions.WithLabelValues(normalizeAsset(asset)).Inc()
}

// RecordMint increments the mint counter.
func (m *StableMetrics) RecordMint() {
	if m == nil {
		return
	}
	m.mints.Inc()
}

// RecordBurn increments the burn counter.
func (m *StableMetrics) RecordBurn() {
	if m == nil {
		return
	}
	m.burns.Inc()
}

// RecordLiquidation increments the liquidation counter for the seized asset.
func (m *StableMetrics) RecordLiquidation(asset string) {
	if m == nil {
		return
	}
	m.liquidations.WithLabelValues(normalizeAsset(asset)).Inc()
}

// SetStableSupply records the current total supply of the stable unit.
func (m *StableMetrics) SetStableSupply(supply float64) {
	if m == nil {
		return
	}
	m.supply.Set(supply)
}
