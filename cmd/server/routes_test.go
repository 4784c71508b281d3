package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tecu23/sideduel-server/internal/auth"
	"github.com/tecu23/sideduel-server/internal/rules"
	"github.com/tecu23/sideduel-server/pkg/config"
	"github.com/tecu23/sideduel-server/pkg/events"
	"github.com/tecu23/sideduel-server/pkg/game"
	"github.com/tecu23/sideduel-server/pkg/manager"
	"github.com/tecu23/sideduel-server/pkg/repository"
	"github.com/tecu23/sideduel-server/pkg/server"
)

func newTestApp(keys ...string) *application {
	logger := zap.NewNop()
	publisher := events.NewPublisher()
	gm := manager.NewManager(repository.NewInMemoryRepository(logger), rules.NewStandard(), publisher, logger)

	return &application{
		Auth:      auth.NewAPIKeyAuth(keys),
		Logger:    logger,
		Config:    &config.Config{Port: "0", TickInterval: 500 * time.Millisecond},
		Publisher: publisher,
		Manager:   gm,
		Hub:       server.NewHub(gm, publisher, logger),
		StartTime: time.Now(),
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp("secret")

	rec := httptest.NewRecorder()
	app.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestSessionSnapshotEndpoint(t *testing.T) {
	app := newTestApp()

	rec := httptest.NewRecorder()
	app.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, err := app.Manager.Join(context.Background(), "g1", "p1", "alice")
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	app.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/g1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap game.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "g1", snap.ID)
	assert.Equal(t, game.StatusWaiting, snap.Status.Type)
}

func TestWebsocketRequiresKey(t *testing.T) {
	app := newTestApp("secret")

	rec := httptest.NewRecorder()
	app.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A valid key passes auth; the plain request then fails the upgrade.
	rec = httptest.NewRecorder()
	app.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws?api_key=secret", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
