package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface lists the operations of api/openapi.yaml, one method per
// operationId. /metrics and /openapi.yaml are mounted separately.
type ServerInterface interface {
	GetHealth(w http.ResponseWriter, r *http.Request)
	GetInfo(w http.ResponseWriter, r *http.Request)
	GetStatus(w http.ResponseWriter, r *http.Request)
	GetBlackboard(w http.ResponseWriter, r *http.Request)
	Halt(w http.ResponseWriter, r *http.Request)
	SubscribeEvents(w http.ResponseWriter, r *http.Request, params SubscribeEventsParams)
}

// SubscribeEventsParams are the query parameters of GET /events.
type SubscribeEventsParams struct {
	// Path keeps only events for nodes under this path.
	Path *string `form:"path,omitempty" json:"path,omitempty"`
}

var _ ServerInterface = (*Server)(nil)

// InvalidParamFormatError reports a query parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// wrapper binds request parameters before calling the handler.
type wrapper struct {
	handler ServerInterface
}

func (w *wrapper) subscribeEvents(rw http.ResponseWriter, r *http.Request) {
	var params SubscribeEventsParams
	if err := runtime.BindQueryParameter("form", true, false, "path", r.URL.Query(), &params.Path); err != nil {
		http.Error(rw, (&InvalidParamFormatError{ParamName: "path", Err: err}).Error(), http.StatusBadRequest)
		return
	}
	w.handler.SubscribeEvents(rw, r, params)
}

// HandlerFromMux registers the operations of si on r and returns r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	w := &wrapper{handler: si}
	r.Get("/health", si.GetHealth)
	r.Get("/info", si.GetInfo)
	r.Get("/status", si.GetStatus)
	r.Get("/blackboard", si.GetBlackboard)
	r.Post("/halt", si.Halt)
	r.Get("/events", w.subscribeEvents)
	return r
}
