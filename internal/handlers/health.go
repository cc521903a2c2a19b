package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/invoicing-api/internal/httpx"
)

type healthResponse struct {
	Status string `json:"status"`
}

// Health is the plain liveness probe.
func Health(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, healthResponse{Status: "healthy"})
}

// Healthz additionally runs a lightweight DB check.
func Healthz(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, healthResponse{Status: "healthy"})
	}
}
