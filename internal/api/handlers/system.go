package handlers

import (
	"database/sql"
	"net/http"

	"github.com/invest-earning/event-engine/internal/database"
	"github.com/invest-earning/event-engine/internal/repository"
)

// BrokerStatus is the connection-liveness view the handler needs from the
// AMQP broker.
type BrokerStatus interface {
	IsClosed() bool
}

// SystemHandler serves the ops endpoints: liveness of the two stores and
// the broker, and a summary of the analytic table's sync state.
type SystemHandler struct {
	walletDB   *sql.DB
	analyticDB *sql.DB
	broker     BrokerStatus
	walletRepo *repository.WalletRepository
	yieldRepo  *repository.YieldRepository
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(
	walletDB, analyticDB *sql.DB,
	broker BrokerStatus,
	walletRepo *repository.WalletRepository,
	yieldRepo *repository.YieldRepository,
) *SystemHandler {
	return &SystemHandler{
		walletDB:   walletDB,
		analyticDB: analyticDB,
		broker:     broker,
		walletRepo: walletRepo,
		yieldRepo:  yieldRepo,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string `json:"status"`
	WalletDB   string `json:"wallet_db"`
	AnalyticDB string `json:"analytic_db"`
	Broker     string `json:"broker"`
	Error      string `json:"error,omitempty"`
}

// Health checks connectivity to both stores and the broker.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:     "healthy",
		WalletDB:   "connected",
		AnalyticDB: "connected",
		Broker:     "connected",
	}
	status := http.StatusOK

	if err := database.HealthCheck(h.walletDB); err != nil {
		response.Status = "unhealthy"
		response.WalletDB = "disconnected"
		response.Error = err.Error()
		status = http.StatusServiceUnavailable
	}
	if err := database.HealthCheck(h.analyticDB); err != nil {
		response.Status = "unhealthy"
		response.AnalyticDB = "disconnected"
		response.Error = err.Error()
		status = http.StatusServiceUnavailable
	}
	if h.broker.IsClosed() {
		response.Status = "unhealthy"
		response.Broker = "disconnected"
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, response)
}

// StatusResponse summarizes the analytic table against the wallet store.
type StatusResponse struct {
	Earnings  int64 `json:"earnings"`
	YieldRows int64 `json:"yield_rows"`
	InSync    bool  `json:"in_sync"`
}

// Status handles GET requests for the sync-state summary. A count mismatch
// here means the next reconciliation sweep will rebuild the table.
//
// Endpoint: GET /api/system/status
// Response: 200 OK with StatusResponse
// Error: 500 Internal Server Error if either count query fails
func (h *SystemHandler) Status(w http.ResponseWriter, r *http.Request) {
	earnings, err := h.walletRepo.CountEarnings()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count earnings", err)
		return
	}

	yieldRows, err := h.yieldRepo.Count()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count yield rows", err)
		return
	}

	respondJSON(w, http.StatusOK, StatusResponse{
		Earnings:  earnings,
		YieldRows: yieldRows,
		InSync:    earnings == yieldRows,
	})
}
