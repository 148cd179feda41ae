package rpc

import (
	"encoding/json"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stablecore/core/state"
	"stablecore/crypto"
	"stablecore/native/stable"
	"stablecore/native/token"
	"stablecore/oracle"
	"stablecore/storage"
)

func newTestServer(t *testing.T) (*Server, *stable.Engine, crypto.Address) {
	t.Helper()

	engine, stableUnit, depositor := buildFixture(t)
	return NewServer(engine, stableUnit, slog.Default(), 0), engine, depositor
}

func buildFixture(t *testing.T) (*stable.Engine, *token.StableUnit, crypto.Address) {
	t.Helper()

	engineAddr := crypto.MustNewAddress(bytesOf(0x01))
	depositor := crypto.MustNewAddress(bytesOf(0x02))

	stableUnit := token.NewStableUnit("SCU", nil)
	require.NoError(t, stableUnit.TransferOwnership(engineAddr))

	collateral := token.NewLedger("WETH")
	oneEth := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	require.NoError(t, collateral.Issue(depositor, new(big.Int).Mul(big.NewInt(10), oneEth)))

	feed := oracle.NewManualFeed("manual", 0)
	require.NoError(t, feed.SetPriceString("2000", time.Now()))

	engine, err := stable.NewEngine(engineAddr, stableUnit, []string{"WETH"}, []stable.Asset{collateral}, []oracle.Feed{feed})
	require.NoError(t, err)

	store, err := state.NewPositionStore(storage.NewMemDB())
	require.NoError(t, err)
	engine.SetState(store)

	require.NoError(t, engine.DepositCollateral(depositor, "WETH", new(big.Int).Mul(big.NewInt(4), oneEth)))
	require.NoError(t, engine.Mint(depositor, new(big.Int).Mul(big.NewInt(500), oneEth)))

	return engine, stableUnit, depositor
}

func bytesOf(b byte) []byte {
	out := make([]byte, crypto.AddressLength)
	out[crypto.AddressLength-1] = b
	return out
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	server, _, _ := newTestServer(t)
	rec := get(t, server.Router(), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestParams(t *testing.T) {
	server, _, _ := newTestServer(t)
	rec := get(t, server.Router(), "/v1/params")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload paramsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, uint64(50), payload.LiquidationThresholdPct)
	require.Equal(t, uint64(100), payload.LiquidationPrecision)
	require.Equal(t, uint64(10), payload.LiquidationBonusPct)
	require.Equal(t, "1000000000000000000", payload.MinHealthFactor)
}

func TestCollateralAssets(t *testing.T) {
	server, _, _ := newTestServer(t)
	rec := get(t, server.Router(), "/v1/collateral")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Assets []string `json:"assets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, []string{"WETH"}, payload.Assets)
}

func TestSupply(t *testing.T) {
	server, _, _ := newTestServer(t)
	rec := get(t, server.Router(), "/v1/supply")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Symbol string `json:"symbol"`
		Total  string `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "SCU", payload.Symbol)
	require.Equal(t, "500000000000000000000", payload.Total)
}

func TestPosition(t *testing.T) {
	server, _, depositor := newTestServer(t)
	rec := get(t, server.Router(), "/v1/positions/"+depositor.String())
	require.Equal(t, http.StatusOK, rec.Code)

	var payload positionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, depositor.String(), payload.Address)
	require.Equal(t, "4000000000000000000", payload.Collateral["WETH"])
	require.Equal(t, "500000000000000000000", payload.DebtMinted)
	// 4 ETH at 2000 USD each.
	require.Equal(t, "8000000000000000000000", payload.CollateralValueUSD)
}

func TestPositionHealth(t *testing.T) {
	server, _, depositor := newTestServer(t)
	rec := get(t, server.Router(), "/v1/positions/"+depositor.String()+"/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		HealthFactor string `json:"healthFactor"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	// 8000 USD collateral, threshold applied twice -> 2000 adjusted, debt 500.
	require.Equal(t, "4000000000000000000", payload.HealthFactor)
}

func TestPositionBadAddress(t *testing.T) {
	server, _, _ := newTestServer(t)
	rec := get(t, server.Router(), "/v1/positions/not-an-address")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit(t *testing.T) {
	engine, stableUnit, _ := buildFixture(t)
	server := NewServer(engine, stableUnit, slog.Default(), 1)
	router := server.Router()

	rec := get(t, router, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = get(t, router, "/healthz")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}
