package web

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/openvault-labs/tvm/internal/logger"
	"github.com/openvault-labs/tvm/internal/state"
	"github.com/openvault-labs/tvm/internal/strategy"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer exposes a read-only JSON API over the persisted ledger
// snapshots and operation receipts. It never touches the live ledgers, so
// it can serve concurrently with the engine's single-threaded operation
// model.
type WebServer struct {
	router     *mux.Router
	port       string
	strategies *strategy.Registry
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, strategies *strategy.Registry) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router:     mux.NewRouter(),
		port:       port,
		strategies: strategies,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/vault", ws.handleGetVault).Methods("GET")
	api.HandleFunc("/vault/holders/{holder}", ws.handleGetHolder).Methods("GET")
	api.HandleFunc("/pool", ws.handleGetPool).Methods("GET")
	api.HandleFunc("/pool/accounts/{account}", ws.handleGetPoolAccount).Methods("GET")
	api.HandleFunc("/receipts", ws.handleGetReceipts).Methods("GET")
	api.HandleFunc("/strategies", ws.handleGetStrategies).Methods("GET")

	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server and database health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	dbHealthy := true
	if err := state.TestDBConnection(); err != nil {
		dbHealthy = false
	}

	overallStatus := "OK"
	statusCode := http.StatusOK
	if !dbHealthy {
		overallStatus = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "tvm-token-vault-manager",
			"version": "1.0.0",
		},
		"database_healthy": dbHealthy,
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleGetVault returns the share-ledger section of the latest snapshot
func (ws *WebServer) handleGetVault(w http.ResponseWriter, r *http.Request) {
	snapshot, err := state.LoadLatestSnapshot()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to load latest snapshot")
		ws.writeErrorResponse(w, http.StatusNotFound, "No vault snapshot recorded yet")
		return
	}

	response := map[string]interface{}{
		"cycle":                 snapshot.Cycle,
		"timestamp":             snapshot.Timestamp,
		"total_shares":          snapshot.TotalShares,
		"total_assets":          snapshot.TotalAssets,
		"deposit_fee_bps":       snapshot.DepositFeeBps,
		"withdrawal_fee_bps":    snapshot.WithdrawalFeeBps,
		"performance_fee_bps":   snapshot.PerformanceFeeBps,
		"fee_recipient":         snapshot.FeeRecipient,
		"min_liquidity_reserve": snapshot.MinLiquidityReserve,
		"holder_count":          len(snapshot.Holders),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetHolder returns one holder's share balance from the latest snapshot
func (ws *WebServer) handleGetHolder(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	holder := vars["holder"]

	snapshot, err := state.LoadLatestSnapshot()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to load latest snapshot")
		ws.writeErrorResponse(w, http.StatusNotFound, "No vault snapshot recorded yet")
		return
	}

	shares, ok := snapshot.Holders[holder]
	if !ok {
		shares = "0"
	}

	response := map[string]interface{}{
		"holder":        holder,
		"shares":        shares,
		"as_of_cycle":   snapshot.Cycle,
		"snapshot_time": snapshot.Timestamp,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetPool returns the interest-ledger section of the latest snapshot
func (ws *WebServer) handleGetPool(w http.ResponseWriter, r *http.Request) {
	snapshot, err := state.LoadLatestSnapshot()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to load latest snapshot")
		ws.writeErrorResponse(w, http.StatusNotFound, "No vault snapshot recorded yet")
		return
	}

	response := map[string]interface{}{
		"cycle":                snapshot.Cycle,
		"timestamp":            snapshot.Timestamp,
		"total_principal":      snapshot.TotalPrincipal,
		"annual_rate_bps":      snapshot.AnnualRateBps,
		"last_accrual_instant": snapshot.LastAccrualInstant,
		"account_count":        len(snapshot.PoolAccounts),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetPoolAccount returns one pool account from the latest snapshot
func (ws *WebServer) handleGetPoolAccount(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	account := vars["account"]

	snapshot, err := state.LoadLatestSnapshot()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to load latest snapshot")
		ws.writeErrorResponse(w, http.StatusNotFound, "No vault snapshot recorded yet")
		return
	}

	entry, ok := snapshot.PoolAccounts[account]
	if !ok {
		entry.Principal = "0"
		entry.AccruedInterest = "0"
	}

	response := map[string]interface{}{
		"account":          account,
		"principal":        entry.Principal,
		"accrued_interest": entry.AccruedInterest,
		"as_of_cycle":      snapshot.Cycle,
		"snapshot_time":    snapshot.Timestamp,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetReceipts returns recent operation receipts
func (ws *WebServer) handleGetReceipts(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 500 {
			limit = parsedLimit
		}
	}

	receipts, err := state.LoadRecentReceipts(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to load operation receipts")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve receipts")
		return
	}

	response := map[string]interface{}{
		"receipts": receipts,
		"count":    len(receipts),
		"limit":    limit,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetStrategies returns the registered strategies
func (ws *WebServer) handleGetStrategies(w http.ResponseWriter, r *http.Request) {
	strategies := ws.strategies.List()

	response := map[string]interface{}{
		"strategies": strategies,
		"count":      len(strategies),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
