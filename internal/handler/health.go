package handler // declare the package name; contains HTTP handlers

import (
	"errors"
	"net/http" // net/http provides status codes and response helpers
	"time"

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
	log "github.com/sirupsen/logrus"

	"github.com/threetier/backend/internal/database"
)

// StatusResponse is the body of the health and readiness probes.
type StatusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Health is the liveness endpoint polled by load balancers and container
// orchestrators. It always answers 200 {"status":"healthy"} while the
// process is running and never touches a dependency.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "healthy"})
}

// ReadyHandler reports whether the instance's dependencies are reachable.
// With a nil Pinger there is nothing to check and the instance is ready.
type ReadyHandler struct {
	db      database.Pinger
	timeout time.Duration
}

// NewReadyHandler builds a readiness handler. Pass a nil db to disable the
// database check.
func NewReadyHandler(db database.Pinger, timeout time.Duration) *ReadyHandler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &ReadyHandler{db: db, timeout: timeout}
}

// Ready answers 200 {"status":"ready"} or 503 when the database ping fails.
func (h *ReadyHandler) Ready(c echo.Context) error {
	if h.db == nil {
		return c.JSON(http.StatusOK, StatusResponse{Status: "ready"})
	}
	if err := database.Ping(c.Request().Context(), h.db, h.timeout); err != nil {
		log.WithError(err).Warn("readiness check failed")
		msg := "dependency check failed"
		if errors.Is(err, database.ErrDatabaseUnavailable) {
			msg = database.ErrDatabaseUnavailable.Error()
		}
		return c.JSON(http.StatusServiceUnavailable, StatusResponse{Status: "unavailable", Error: msg})
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "ready"})
}
