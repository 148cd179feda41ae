package observability

import (
	"math/big"

	"stablecore/core/events"
	"stablecore/observability/metrics"
)

// MetricsEmitter bridges engine events into the Prometheus registry. It can
// wrap another emitter so downstream subscribers still see every event.
type MetricsEmitter struct {
	next events.Emitter
}

// NewMetricsEmitter constructs the bridge. A nil next emitter discards events
// after recording them.
func NewMetricsEmitter(next events.Emitter) *MetricsEmitter {
	if next == nil {
		next = events.NoopEmitter{}
	}
	return &MetricsEmitter{next: next}
}

// Emit records the event in the metrics registry and forwards it.
func (m *MetricsEmitter) Emit(evt events.Event) {
	if m == nil {
		return
	}
	registry := metrics.Stable()
	switch e := evt.(type) {
	case events.CollateralDeposited:
		registry.RecordDeposit(e.Asset)
	case events.CollateralRedeemed:
		registry.RecordRedemption(e.Asset)
	case events.StableMinted:
		registry.RecordMint()
	case events.StableBurned:
		registry.RecordBurn()
	case events.PositionLiquidated:
		registry.RecordLiquidation(e.Asset)
	case events.TokenSupply:
		if e.Total != nil {
			supply, _ := new(big.Float).SetInt(e.Total).Float64()
			registry.SetStableSupply(supply)
		}
	}
	m.next.Emit(evt)
}
