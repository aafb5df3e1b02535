package exportrouter

import (
	"context"

	"github.com/goliatone/go-router"

	"github.com/goliatone/go-report-export/adapters/exportapi"
)

// exchange adapts a go-router context to the controller.
type exchange struct {
	c router.Context
}

var (
	_ exportapi.Request  = exchange{}
	_ exportapi.Response = exchange{}
)

func (x exchange) Context() context.Context     { return x.c.Context() }
func (x exchange) Method() string               { return x.c.Method() }
func (x exchange) Path() string                 { return x.c.Path() }
func (x exchange) Query(name string) string     { return x.c.Query(name) }
func (x exchange) SetHeader(name, value string) { x.c.SetHeader(name, value) }
func (x exchange) WriteHeader(status int)       { x.c.Status(status) }

func (x exchange) Write(data []byte) (int, error) {
	if err := x.c.Send(data); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (x exchange) WriteJSON(status int, payload any) error {
	return x.c.JSON(status, payload)
}
