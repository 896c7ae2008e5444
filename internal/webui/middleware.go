package webui

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/csrf"
	"github.com/xtesports/xtesports/internal/util/httputil"
)

type routeKind int

const (
	routePage routeKind = iota
	routeAttach
	routeStatic
)

func (k routeKind) String() string {
	switch k {
	case routePage:
		return "page"
	case routeAttach:
		return "attach"
	case routeStatic:
		return "static"
	default:
		return "?"
	}
}

func (k routeKind) cacheControl() string {
	if k == routeStatic {
		return "max-age=86400, public"
	}
	return "no-store"
}

type middlewareBuilder struct {
	Log         *slog.Logger
	Prefix      string
	CSRFProtect func(http.Handler) http.Handler
	Compress    func(http.Handler) http.Handler
	// MaxBodySize limits request bodies of pages, uploads included.
	MaxBodySize int64
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

type middleware struct {
	b    *middlewareBuilder
	h    http.Handler
	kind routeKind
}

func (m *middleware) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	req = httputil.WithRequestID(req)
	if m.kind == routePage && m.b.MaxBodySize > 0 && req.Body != nil {
		req.Body = http.MaxBytesReader(w, req.Body, m.b.MaxBodySize)
	}
	if w.Header().Get("Cache-Control") == "" {
		w.Header().Set("Cache-Control", m.kind.cacheControl())
	}
	rec := &statusRecorder{ResponseWriter: w}
	m.h.ServeHTTP(rec, req)
	if rec.status == 0 {
		rec.status = http.StatusOK
	}

	level := slog.LevelInfo
	if m.kind == routeStatic {
		level = slog.LevelDebug
	}
	m.b.Log.Log(req.Context(), level, "request done",
		slog.String("rid", httputil.RequestID(req.Context())),
		slog.String("method", req.Method),
		slog.String("uri", req.RequestURI),
		slog.String("addr", req.RemoteAddr),
		slog.String("kind", m.kind.String()),
		slog.Int("status", rec.status),
		slog.Duration("took", time.Since(start)),
	)
}

func (b *middlewareBuilder) wrap(h http.Handler, kind routeKind) http.Handler {
	if kind == routePage && b.CSRFProtect != nil {
		h = b.CSRFProtect(h)
	}
	h = &middleware{b: b, h: h, kind: kind}
	if b.Compress != nil {
		h = b.Compress(h)
	}
	return h
}

func (b *middlewareBuilder) WrapPage(h http.Handler) http.Handler   { return b.wrap(h, routePage) }
func (b *middlewareBuilder) WrapAttach(h http.Handler) http.Handler { return b.wrap(h, routeAttach) }
func (b *middlewareBuilder) WrapStatic(h http.Handler) http.Handler { return b.wrap(h, routeStatic) }

func csrfFailure(log *slog.Logger) func(w http.ResponseWriter, req *http.Request) {
	return func(w http.ResponseWriter, req *http.Request) {
		reason := "unknown"
		if err := csrf.FailureReason(req); err != nil {
			reason = err.Error()
		}
		log.Warn("csrf check failed",
			slog.String("rid", httputil.RequestID(req.Context())),
			slog.String("reason", reason),
		)
		writeHTTPErr(log, w, httputil.MakeError(http.StatusForbidden, "Invalid or missing form token, reload the page and try again"))
	}
}
