package web

import (
	"context"
	"net/http"
	"time"

	"github.com/JonMunkholm/roster/internal/core"
)

type healthJSON struct {
	Status   string                   `json:"status"`
	Database string                   `json:"database"`
	Imports  core.ImportLimiterStatus `json:"imports"`
}

// handleHealth reports liveness, import slot usage and database
// reachability. An unreachable database degrades the status to 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthJSON{
		Status:   "ok",
		Database: "disabled",
		Imports:  s.limiter.Status(),
	}
	status := http.StatusOK

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}

	writeJSON(w, status, resp)
}
