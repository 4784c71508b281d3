package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (app *application) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", app.handleHealth)
	r.Get("/sessions/{id}", app.handleSessionSnapshot)
	r.Get("/ws", app.authenticate(app.handleWebSocket))

	return r
}
