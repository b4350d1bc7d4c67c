package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/coursemark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/coursemark/internal/logger"
)

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// Readyz reports ready once the store answers and at least one course is loaded.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := d.Store.Ping(ctx); err != nil {
			d.Logger.Warn("readiness check failed: store unreachable", logger.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false, Error: "store unreachable"})
			return
		}
		if d.Tree.CourseCount() == 0 {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false, Error: "no course loaded"})
			return
		}

		writeJSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}
