package exporthttp

import (
	"net/http"

	"github.com/goliatone/go-report-export/adapters/exportapi"
	"github.com/goliatone/go-report-export/export"
)

// Config configures the HTTP adapter.
type Config = exportapi.Config

// Handler serves report downloads over net/http.
type Handler struct {
	controller *exportapi.Controller
}

func NewHandler(cfg Config) *Handler {
	return &Handler{controller: exportapi.NewController(cfg)}
}

// Mux is satisfied by *http.ServeMux and most net/http compatible routers.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// RegisterRoutes mounts the download endpoint on mux.
func (h *Handler) RegisterRoutes(mux Mux) {
	base := h.controller.BasePath()
	mux.Handle(base, h)
	mux.Handle(base+"/", h)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if w == nil {
		return
	}
	x := exchange{w: w, r: r}
	if h == nil || h.controller == nil {
		exportapi.WriteError(x, export.NewError(export.KindInternal, "handler is nil", nil))
		return
	}
	h.controller.Serve(x, x)
}
