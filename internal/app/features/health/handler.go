package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/edulibrary/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// LibraryCounter reports how many session libraries are held in memory.
type LibraryCounter interface {
	Len() int
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client    *mongo.Client // nil when audit storage is not configured
	Libraries LibraryCounter
	Log       *zap.Logger
}

// NewHandler constructs a health Handler. client may be nil.
func NewHandler(client *mongo.Client, libs LibraryCounter, logger *zap.Logger) *Handler {
	return &Handler{
		Client:    client,
		Libraries: libs,
		Log:       logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status        string `json:"status"`
	Database      string `json:"database"`
	LibrariesOpen int    `json:"libraries_open"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected"|"disabled", "libraries_open":2 }
//
// On DB failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "disabled",
	}
	if h.Libraries != nil {
		resp.LibrariesOpen = h.Libraries.Len()
	}

	// Audit storage is optional; without it there is nothing to ping.
	if h.Client != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
		defer cancel()

		if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
			h.Log.Error("health-check: mongo ping failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			resp.Status = "error"
			resp.Database = "disconnected"
			resp.Message = "Database unavailable"
			resp.Error = err.Error()
			_ = json.NewEncoder(w).Encode(resp)
			return
		}
		resp.Database = "connected"
	}

	_ = json.NewEncoder(w).Encode(resp)
}
