package errresponse

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/realworld/internal/apperr"
	"github.com/SergeyParamoshkin/realworld/internal/logging"
)

// ErrResponse renderer type for handling all sorts of errors. It renders the
// failure envelope {statusCode, message, detail}.
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"statusCode"`

	Message string   `json:"message"`
	Detail  []string `json:"detail"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)

	return nil
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		Message:        "invalid request",
		Detail:         []string{"request body is not valid JSON"},
	}
}

func ErrRender(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnprocessableEntity,
		Message:        "error rendering response",
		Detail:         []string{"response could not be encoded"},
	}
}

func ErrUnknown(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		Message:        "unknown server error",
		Detail:         []string{"internal error"},
	}
}

var ErrNotFound = &ErrResponse{
	HTTPStatusCode: http.StatusNotFound,
	Message:        "error",
	Detail:         []string{"resource not found"},
}

var ErrMethodNotAllowed = &ErrResponse{
	HTTPStatusCode: http.StatusMethodNotAllowed,
	Message:        "error",
	Detail:         []string{"method not allowed"},
}

var ErrTooManyRequests = &ErrResponse{
	HTTPStatusCode: http.StatusTooManyRequests,
	Message:        "error",
	Detail:         []string{"rate limit exceeded"},
}

var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation:      http.StatusBadRequest,
	apperr.KindConflict:        http.StatusBadRequest,
	apperr.KindNotFound:        http.StatusNotFound,
	apperr.KindUnauthenticated: http.StatusUnauthorized,
	apperr.KindForbidden:       http.StatusForbidden,
}

// FromError maps a service error onto its envelope. Anything that is not an
// *apperr.Error becomes a generic 500.
func FromError(err error) render.Renderer {
	var e *apperr.Error
	if !errors.As(err, &e) {
		return ErrUnknown(err)
	}

	status, ok := statusByKind[e.Kind]
	if !ok {
		return ErrUnknown(err)
	}

	detail := e.Detail
	if detail == nil {
		detail = []string{}
	}

	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: status,
		Message:        e.Message,
		Detail:         detail,
	}
}

// Fail renders err onto w. Errors that map to a 500 are logged with the
// request logger since their detail never reaches the client.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	resp := FromError(err)
	if er, ok := resp.(*ErrResponse); ok && er.HTTPStatusCode >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).Errorw("request failed", "error", err)
	}

	if err := render.Render(w, r, resp); err != nil {
		logging.FromContext(r.Context()).Errorw(err.Error())
	}
}

// BadRequest renders the envelope for a body that could not be decoded.
func BadRequest(w http.ResponseWriter, r *http.Request, err error) {
	if err := render.Render(w, r, ErrInvalidRequest(err)); err != nil {
		logging.FromContext(r.Context()).Errorw(err.Error())
	}
}
