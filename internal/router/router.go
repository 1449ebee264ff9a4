package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/threetier/backend/internal/handler"
)

// Handlers bundles everything the routes dispatch to. Middleware fields may
// be nil, in which case the route is registered without them.
type Handlers struct {
	Data      *handler.DataHandler
	Ready     *handler.ReadyHandler
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

// RegisterRoutes maps the service's routes onto e.
//
// The probe routes (/health, /ready) are never rate limited or cached so
// orchestrators always see the live answer.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/health", handler.Health)
	e.GET("/ready", h.Ready.Ready)

	var mw []echo.MiddlewareFunc
	// limiter runs first so throttled requests never reach the cache
	if h.RateLimit != nil {
		mw = append(mw, h.RateLimit)
	}
	if h.Cache != nil {
		mw = append(mw, h.Cache)
	}
	api := e.Group("/api", mw...)
	api.GET("/data", h.Data.Get)
}
