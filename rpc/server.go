package rpc

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"stablecore/crypto"
	"stablecore/native/stable"
	"stablecore/native/token"
)

// Server exposes the engine's read-only query surface over HTTP. Mutating
// operations are deliberately absent: the engine's trust boundary is
// in-process and state transitions do not arrive over this API.
type Server struct {
	engine  *stable.Engine
	stable  *token.StableUnit
	logger  *slog.Logger
	limiter *rate.Limiter
}

// NewServer wires the query server. ratePerSecond bounds request throughput;
// zero disables the limiter.
func NewServer(engine *stable.Engine, stableUnit *token.StableUnit, logger *slog.Logger, ratePerSecond int) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	var limiter *rate.Limiter
	if ratePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSecond), ratePerSecond)
	}
	return &Server{engine: engine, stable: stableUnit, logger: logger, limiter: limiter}
}

// Router assembles the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.throttle)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/params", s.handleParams)
		r.Get("/collateral", s.handleCollateral)
		r.Get("/supply", s.handleSupply)
		r.Get("/positions/{address}", s.handlePosition)
		r.Get("/positions/{address}/health", s.handleHealth)
	})
	return r
}

func (s *Server) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type paramsResponse struct {
	LiquidationThresholdPct uint64 `json:"liquidationThresholdPct"`
	LiquidationPrecision    uint64 `json:"liquidationPrecision"`
	LiquidationBonusPct     uint64 `json:"liquidationBonusPct"`
	MinHealthFactor         string `json:"minHealthFactor"`
	Precision               string `json:"precision"`
	OracleScaleAdjust       string `json:"oracleScaleAdjust"`
}

func (s *Server) handleParams(w http.ResponseWriter, _ *http.Request) {
	params := s.engine.Params()
	writeJSON(w, http.StatusOK, paramsResponse{
		LiquidationThresholdPct: params.LiquidationThresholdPct,
		LiquidationPrecision:    params.LiquidationPrecision,
		LiquidationBonusPct:     params.LiquidationBonusPct,
		MinHealthFactor:         params.MinHealthFactor.String(),
		Precision:               params.Precision.String(),
		OracleScaleAdjust:       params.OracleScaleAdjust.String(),
	})
}

func (s *Server) handleCollateral(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"assets": s.engine.CollateralAssets()})
}

func (s *Server) handleSupply(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"symbol": s.stable.Symbol(),
		"total":  s.stable.TotalSupply().String(),
	})
}

type positionResponse struct {
	Address            string            `json:"address"`
	Collateral         map[string]string `json:"collateral"`
	DebtMinted         string            `json:"debtMinted"`
	CollateralValueUSD string            `json:"collateralValueUsd"`
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.pathAddress(w, r)
	if !ok {
		return
	}
	collateral := make(map[string]string)
	for _, symbol := range s.engine.CollateralAssets() {
		balance, err := s.engine.CollateralBalance(addr, symbol)
		if err != nil {
			s.serverError(w, err)
			return
		}
		collateral[symbol] = balance.String()
	}
	debt, err := s.engine.TotalDebt(addr)
	if err != nil {
		s.serverError(w, err)
		return
	}
	value, err := s.engine.CollateralValueUSD(addr)
	if err != nil {
		s.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, positionResponse{
		Address:            addr.String(),
		Collateral:         collateral,
		DebtMinted:         debt.String(),
		CollateralValueUSD: value.String(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.pathAddress(w, r)
	if !ok {
		return
	}
	factor, err := s.engine.HealthFactor(addr)
	if err != nil {
		s.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"address":      addr.String(),
		"healthFactor": factor.String(),
	})
}

func (s *Server) pathAddress(w http.ResponseWriter, r *http.Request) (crypto.Address, bool) {
	raw := chi.URLParam(r, "address")
	addr, err := crypto.DecodeAddress(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return crypto.Address{}, false
	}
	return addr, true
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.logger.Error("query failed", slog.Any("error", err))
	writeError(w, http.StatusServiceUnavailable, err)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
