package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/threetier/backend/internal/config"
)

const (
	dataMessage = "Hello from the BMW 3-Tier Backend!"
	dataTier    = "Application Layer"
)

// DataResponse is the static example payload served by /api/data.
type DataResponse struct {
	Message             string `json:"message"`
	DatabaseConnectedTo string `json:"database_connected_to"`
	Tier                string `json:"tier"`
}

// DataHandler serves the example data endpoint. It only reports the
// configured database host; no connection is made.
type DataHandler struct {
	dbHost string
}

func NewDataHandler(cfg config.Config) *DataHandler {
	return &DataHandler{dbHost: cfg.DBHost}
}

// Get handles GET /api/data.
func (h *DataHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, DataResponse{
		Message:             dataMessage,
		DatabaseConnectedTo: h.dbHost,
		Tier:                dataTier,
	})
}
