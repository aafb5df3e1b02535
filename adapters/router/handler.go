package exportrouter

import (
	"github.com/goliatone/go-router"

	"github.com/goliatone/go-report-export/adapters/exportapi"
	"github.com/goliatone/go-report-export/export"
)

// Config configures the go-router adapter.
type Config = exportapi.Config

// Handler serves report downloads through go-router.
type Handler struct {
	controller *exportapi.Controller
}

func NewHandler(cfg Config) *Handler {
	return &Handler{controller: exportapi.NewController(cfg)}
}

// Registrar is the slice of go-router's router used to mount the endpoint.
type Registrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// RegisterRoutes mounts GET <base> on r.
func (h *Handler) RegisterRoutes(r Registrar) {
	base := h.controller.BasePath()
	r.Get(base, h.Handle)
	r.Get(base+"/", h.Handle)
}

// Handle runs the download for one router request. Failures are written to
// the response, so the returned error is always nil.
func (h *Handler) Handle(c router.Context) error {
	if c == nil {
		return nil
	}
	x := exchange{c: c}
	if h == nil || h.controller == nil {
		exportapi.WriteError(x, export.NewError(export.KindInternal, "handler is nil", nil))
		return nil
	}
	h.controller.Serve(x, x)
	return nil
}
