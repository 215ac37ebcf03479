// Package dataresponse renders the success envelope {statusCode, message, data}.
package dataresponse

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/realworld/internal/errresponse"
	"github.com/SergeyParamoshkin/realworld/internal/logging"
)

type Response struct {
	HTTPStatusCode int         `json:"statusCode"`
	Message        string      `json:"message"`
	Data           interface{} `json:"data"`
}

func New(status int, message string, data interface{}) *Response {
	return &Response{HTTPStatusCode: status, Message: message, Data: data}
}

func OK(data interface{}) *Response {
	return New(http.StatusOK, "success", data)
}

func Created(message string, data interface{}) *Response {
	return New(http.StatusCreated, message, data)
}

func (d *Response) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, d.HTTPStatusCode)

	return nil
}

// Write renders resp, falling back to the render error envelope.
func Write(w http.ResponseWriter, r *http.Request, resp *Response) {
	if err := render.Render(w, r, resp); err != nil {
		err = render.Render(w, r, errresponse.ErrRender(err))
		if err != nil {
			logging.FromContext(r.Context()).Errorw(err.Error())
		}
	}
}
