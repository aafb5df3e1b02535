package exporthttp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/goliatone/go-report-export/adapters/exportapi"
)

// exchange adapts one net/http request/response pair to the controller.
type exchange struct {
	w http.ResponseWriter
	r *http.Request
}

var (
	_ exportapi.Request  = exchange{}
	_ exportapi.Response = exchange{}
)

func (x exchange) Context() context.Context {
	if x.r == nil {
		return context.Background()
	}
	return x.r.Context()
}

func (x exchange) Method() string {
	if x.r == nil {
		return http.MethodGet
	}
	return x.r.Method
}

func (x exchange) Path() string {
	if x.r == nil || x.r.URL == nil {
		return ""
	}
	return x.r.URL.Path
}

func (x exchange) Query(name string) string {
	if x.r == nil || x.r.URL == nil {
		return ""
	}
	return x.r.URL.Query().Get(name)
}

func (x exchange) SetHeader(name, value string) { x.w.Header().Set(name, value) }
func (x exchange) WriteHeader(status int)       { x.w.WriteHeader(status) }

func (x exchange) Write(data []byte) (int, error) { return x.w.Write(data) }

func (x exchange) WriteJSON(status int, payload any) error {
	x.w.Header().Set("Content-Type", "application/json")
	x.w.WriteHeader(status)
	return json.NewEncoder(x.w).Encode(payload)
}
