package exportapi

import "context"

// Request is the read side of a download exchange as seen by the controller.
type Request interface {
	Context() context.Context
	Method() string
	Path() string
	Query(name string) string
}

// Response is the write side of a download exchange. Headers must be set
// before WriteHeader or WriteJSON.
type Response interface {
	SetHeader(name, value string)
	WriteHeader(status int)
	Write(data []byte) (int, error)
	WriteJSON(status int, payload any) error
}

// ErrorResponse is the JSON body written for failed downloads.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
