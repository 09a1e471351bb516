// Package render erzeugt Antworten in kleinen, begrenzten Stücken. Jede Route
// liefert einen Stream aus Parts; der Renderer produziert pro Aufruf des
// Transports genau ein Stück und gibt die Kontrolle dann zurück.
package render

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"heatmon/pkg/form"
)

// Content types of the request surface
const (
	ContentHTML = "text/html"
	ContentJSON = "application/json"
	ContentText = "text/plain"
)

// ErrNoRoute is returned for an exchange whose route has no handler
var ErrNoRoute = errors.New("render: no handler for route")

// Phase of an exchange
type Phase int

const (
	Header Phase = iota
	Body
)

// Sink is the output side of an exchange
type Sink interface {
	io.Writer
	Header(status int, contentType string)
}

// Exchange is the per-request context. The transport owns it and increments
// Step by one before every body invocation.
type Exchange struct {
	Phase Phase
	Step  int
	Route string
	Out   Sink
	Form  *form.Fragments

	stream *Stream
	served int
	done   bool
}

// NewExchange creates an exchange for route with a fragment store bounded by limits
func NewExchange(route string, out Sink, limits form.Limits) *Exchange {
	return &Exchange{
		Route: route,
		Out:   out,
		Form:  form.New(limits),
	}
}

// Done reports whether the response is complete
func (ex *Exchange) Done() bool {
	return ex.done
}

// Handler produces the content of one route
type Handler interface {
	ContentType() string
	Open(ex *Exchange) *Stream
}

// FormHandler is a Handler that consumes a submitted form. The transport
// accepts only POST for its route.
type FormHandler interface {
	Handler
	ConsumesForm() bool
}

type handlerFunc struct {
	contentType string
	open        func(ex *Exchange) *Stream
	form        bool
}

func (h handlerFunc) ContentType() string       { return h.contentType }
func (h handlerFunc) Open(ex *Exchange) *Stream { return h.open(ex) }
func (h handlerFunc) ConsumesForm() bool        { return h.form }

// Func adapts a function to a Handler
func Func(contentType string, open func(ex *Exchange) *Stream) Handler {
	return handlerFunc{contentType: contentType, open: open}
}

// Submit adapts a function to a FormHandler
func Submit(contentType string, open func(ex *Exchange) *Stream) Handler {
	return handlerFunc{contentType: contentType, open: open, form: true}
}

// Observer is told about every produced chunk
type Observer func(route string, bytes int)

// Renderer dispatches exchanges to route handlers
type Renderer struct {
	routes  map[string]Handler
	observe Observer
}

// New creates an empty renderer
func New() *Renderer {
	return &Renderer{routes: make(map[string]Handler)}
}

// Handle registers h for route
func (r *Renderer) Handle(route string, h Handler) {
	r.routes[route] = h
}

// Routes returns the registered route names
func (r *Renderer) Routes() []string {
	out := make([]string, 0, len(r.routes))
	for route := range r.routes {
		out = append(out, route)
	}
	return out
}

// ConsumesForm reports whether the handler of route needs a form submission
func (r *Renderer) ConsumesForm(route string) bool {
	h, ok := r.routes[route].(FormHandler)
	return ok && h.ConsumesForm()
}

// Observe registers fn for chunk statistics
func (r *Renderer) Observe(fn Observer) {
	r.observe = fn
}

// Serve runs one invocation of ex and reports whether the response is done.
// The header phase writes status and content type only. In the body phase
// an invocation whose Step did not advance is ignored, and nothing is
// emitted once the stream is exhausted.
func (r *Renderer) Serve(ex *Exchange) (bool, error) {
	if ex.done {
		return true, nil
	}

	if ex.Phase == Header {
		h, ok := r.routes[ex.Route]
		if !ok {
			return true, fmt.Errorf("%w: %s", ErrNoRoute, ex.Route)
		}
		ex.Out.Header(http.StatusOK, h.ContentType())
		ex.stream = h.Open(ex)
		ex.Phase = Body
		ex.served = ex.Step
		return false, nil
	}

	if ex.Step <= ex.served {
		return false, nil
	}
	ex.served = ex.Step

	w := NewWriter(ex.Out)
	more := ex.stream.Next(w)
	if r.observe != nil && w.Written() > 0 {
		r.observe(ex.Route, w.Written())
	}
	if err := w.Err(); err != nil {
		ex.done = true
		return true, fmt.Errorf("render %s: %w", ex.Route, err)
	}
	if !more {
		ex.done = true
	}
	return ex.done, nil
}

// Run drives ex to completion the way the transport does: header first,
// then one body invocation per step.
func (r *Renderer) Run(ex *Exchange) error {
	for {
		done, err := r.Serve(ex)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		ex.Step++
	}
}
