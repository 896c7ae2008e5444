package httputil

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/xtesports/xtesports/internal/util/idgen"
)

type reqIDKey struct{}

// WithRequestID tags the request context with a fresh id for log correlation.
func WithRequestID(req *http.Request) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), reqIDKey{}, idgen.ID()))
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(reqIDKey{}).(string)
	return id
}

// ClientAddr returns the host part of the peer address. X-Forwarded-For is honored only when
// trustProxy is set.
func ClientAddr(req *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := req.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}

// BaseURL reconstructs scheme://host of the incoming request.
func BaseURL(req *http.Request, trustProxy bool) string {
	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	if trustProxy {
		if p := req.Header.Get("X-Forwarded-Proto"); p != "" {
			scheme = p
		}
	}
	return scheme + "://" + req.Host
}
