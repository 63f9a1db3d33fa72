package handlers

import (
	"database/sql"
	"net/http"
)

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		errorResponse(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"status": "ok"}); err != nil {
		serverErrorResponse(w, r, err)
	}
}
