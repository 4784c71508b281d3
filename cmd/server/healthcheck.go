package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tecu23/sideduel-server/pkg/manager"
)

// handleHealth handles the GET /health endpoint
func (app *application) handleHealth(w http.ResponseWriter, _ *http.Request) {
	app.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"uptime":   time.Since(app.StartTime).Round(time.Second).String(),
		"sessions": len(app.Manager.SessionIDs()),
	})
}

// handleSessionSnapshot handles GET /sessions/{id}
func (app *application) handleSessionSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := app.Manager.Snapshot(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, manager.ErrSessionNotFound) {
		app.writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		app.Logger.Error("snapshot failed", zap.Error(err))
		app.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	app.writeJSON(w, http.StatusOK, snap)
}

func (app *application) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.Logger.Debug("write response failed", zap.Error(err))
	}
}
