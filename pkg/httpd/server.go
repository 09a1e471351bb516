// Package httpd verbindet den Renderer mit net/http. Jeder Request wird zu
// einem render.Exchange, dessen Aufrufe auf der Device-Loop laufen; der
// HTTP-Goroutine bleibt nur das Kopieren der fertigen Stücke.
package httpd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"heatmon/pkg/crash"
	"heatmon/pkg/form"
	"heatmon/pkg/metrics"
	"heatmon/pkg/render"
)

// ReadSize is the size of one body read handed to the form decoder
const ReadSize = 128

// Routes outside the renderer
const (
	RouteMetrics = "/metrics"
	RouteConsole = "/ws"
)

// Config wires the server
type Config struct {
	Renderer *render.Renderer
	Loop     *Loop
	Metrics  *metrics.Collector
	Console  http.Handler
	Limits   form.Limits

	// FatalOnExhaustion restarts the process instead of answering 413
	FatalOnExhaustion bool
	Log               zerolog.Logger
}

// Server is the admin interface transport
type Server struct {
	cfg    Config
	router chi.Router
	log    zerolog.Logger
}

// New builds the router for every route the renderer knows
func New(cfg Config) *Server {
	s := &Server{
		cfg: cfg,
		log: cfg.Log.With().Str("component", "httpd").Logger(),
	}
	if cfg.Metrics != nil {
		cfg.Renderer.Observe(cfg.Metrics.Chunk)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)

	for _, route := range cfg.Renderer.Routes() {
		// Formular-Routen nie per GET, sonst wird ein leerer Submit gespeichert
		if !cfg.Renderer.ConsumesForm(route) {
			r.Get(route, s.serve)
		}
		r.Post(route, s.serve)
	}
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, RouteMetrics, cfg.Metrics.Handler())
	}
	if cfg.Console != nil {
		r.Method(http.MethodGet, RouteConsole, cfg.Console)
	}
	s.router = r
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	crash.SafeGo("http-server", func() {
		s.log.Info().Str("listen", addr).Msg("Admin interface listening")
		errCh <- srv.ListenAndServe()
	})

	select {
	case err := <-errCh:
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// chunkSink nimmt genau ein Stück pro Aufruf auf
type chunkSink struct {
	status      int
	contentType string
	buf         bytes.Buffer
}

func (c *chunkSink) Header(status int, contentType string) {
	c.status = status
	c.contentType = contentType
}

func (c *chunkSink) Write(p []byte) (int, error) {
	return c.buf.Write(p)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out := &chunkSink{}
	ex := render.NewExchange(r.URL.Path, out, s.cfg.Limits)

	if r.Method == http.MethodPost {
		if err := s.decodeBody(ctx, r.Body, ex); err != nil {
			s.rejectBody(w, r, ex, err)
			return
		}
	}

	flusher, _ := w.(http.Flusher)
	for {
		out.buf.Reset()
		var (
			done bool
			err  error
		)
		if lerr := s.cfg.Loop.Do(ctx, func() {
			done, err = s.cfg.Renderer.Serve(ex)
			if !done {
				ex.Step++
			}
		}); lerr != nil {
			s.log.Debug().Err(lerr).Str("route", ex.Route).Msg("Request abandoned")
			return
		}

		if errors.Is(err, render.ErrNoRoute) {
			http.NotFound(w, r)
			return
		}
		if out.status != 0 {
			w.Header().Set("Content-Type", out.contentType)
			w.WriteHeader(out.status)
			out.status = 0
		}
		if out.buf.Len() > 0 {
			if _, werr := w.Write(out.buf.Bytes()); werr != nil {
				s.log.Debug().Err(werr).Str("route", ex.Route).Msg("Client went away")
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			s.log.Error().Err(err).Msg("Render failed")
			return
		}
		if done {
			return
		}
	}
}

// decodeBody liest den Body in kleinen Stücken und füttert den Decoder auf
// der Device-Loop, dort gehört der Fragment-Speicher hin
func (s *Server) decodeBody(ctx context.Context, body io.Reader, ex *render.Exchange) error {
	dec := form.NewDecoder(ex.Form)
	buf := make([]byte, ReadSize)
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			var werr error
			if err := s.cfg.Loop.Do(ctx, func() { _, werr = dec.Write(buf[:n]) }); err != nil {
				return err
			}
			if werr != nil {
				return werr
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return fmt.Errorf("read body: %w", rerr)
		}
	}

	var cerr error
	if err := s.cfg.Loop.Do(ctx, func() { cerr = dec.Close() }); err != nil {
		return err
	}
	return cerr
}

func (s *Server) rejectBody(w http.ResponseWriter, r *http.Request, ex *render.Exchange, err error) {
	_ = s.cfg.Loop.Do(r.Context(), ex.Form.Reset)

	if !errors.Is(err, form.ErrExhausted) {
		s.log.Warn().Err(err).Str("route", ex.Route).Msg("Form submission failed")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s.cfg.Metrics.FormExhausted()
	if s.cfg.FatalOnExhaustion {
		s.log.Error().Err(err).Str("route", ex.Route).Msg("Form budget exhausted, restarting")
		crash.Fatal("form submission", err)
	}
	s.log.Warn().Err(err).Str("route", ex.Route).Msg("Form budget exhausted")
	http.Error(w, "request entity too large", http.StatusRequestEntityTooLarge)
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("Request")
	})
}
