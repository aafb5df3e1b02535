package exportrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/goliatone/go-router"
)

// routerContext aliases router.Context so the embedded field's name does not
// collide with the Context() method defined below.
type routerContext = router.Context

// fakeContext implements the parts of router.Context the download handler
// touches. Calling any other method panics on the nil embedded interface.
type fakeContext struct {
	routerContext
	method   string
	path     string
	query    map[string]string
	headers  map[string]string
	recorder *httptest.ResponseRecorder
	wrote    bool
}

func newFakeContext(method, path string, query map[string]string) *fakeContext {
	return &fakeContext{
		method:   method,
		path:     path,
		query:    query,
		headers:  map[string]string{},
		recorder: httptest.NewRecorder(),
	}
}

func (c *fakeContext) Context() context.Context  { return context.Background() }
func (c *fakeContext) Method() string            { return c.method }
func (c *fakeContext) Path() string              { return c.path }
func (c *fakeContext) Header(name string) string { return c.headers[name] }

func (c *fakeContext) Query(name string, defaultValue ...string) string {
	if value, ok := c.query[name]; ok {
		return value
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (c *fakeContext) SetHeader(key, value string) router.Context {
	c.recorder.Header().Set(key, value)
	return c
}

func (c *fakeContext) Status(code int) router.Context {
	if !c.wrote {
		c.wrote = true
		c.recorder.WriteHeader(code)
	}
	return c
}

func (c *fakeContext) Send(body []byte) error {
	c.Status(http.StatusOK)
	_, err := c.recorder.Write(body)
	return err
}

func (c *fakeContext) JSON(code int, v any) error {
	c.recorder.Header().Set("Content-Type", "application/json")
	c.Status(code)
	return json.NewEncoder(c.recorder).Encode(v)
}
