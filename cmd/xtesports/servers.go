package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"sync/atomic"
	"time"

	"github.com/xtesports/xtesports/internal/util/slogx"
	"golang.org/x/crypto/acme/autocert"
	"golang.org/x/sync/errgroup"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func (o *HTTPSOptions) Validate() error {
	if o.CachePath == "" {
		return fmt.Errorf("https: certificate cache path not specified")
	}
	if len(o.AllowedSecureDomains) == 0 {
		return fmt.Errorf("https: no domains allowed for certificates")
	}
	return nil
}

func (o *HTTPSOptions) certManager() *autocert.Manager {
	return &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(slices.Clone(o.AllowedSecureDomains)...),
		Cache:      autocert.DirCache(o.CachePath),
	}
}

type listener struct {
	name  string
	srv   *http.Server
	serve func(*http.Server) error
}

// servers runs the plain listener, the TLS listener, or both, depending on Options.HTTPS.
type servers struct {
	log       *slog.Logger
	listeners []listener
	group     errgroup.Group
	stopping  atomic.Bool
}

func newServers(ctx context.Context, log *slog.Logger, o *Options, h http.Handler) (*servers, error) {
	s := &servers{log: log}
	mk := func(addr string, h http.Handler) *http.Server {
		return &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: readHeaderTimeout,
			BaseContext:       func(net.Listener) context.Context { return ctx },
		}
	}
	plain := func(srv *http.Server) error { return srv.ListenAndServe() }

	if o.HTTPS == nil {
		s.listeners = append(s.listeners, listener{name: "http", srv: mk(o.AddrWithPort(), h), serve: plain})
		return s, nil
	}
	if err := o.HTTPS.Validate(); err != nil {
		return nil, err
	}
	m := o.HTTPS.certManager()
	if o.HTTPS.ExposeInsecure {
		// ACME http-01 challenges are answered here, other requests pass through.
		s.listeners = append(s.listeners, listener{name: "http", srv: mk(o.AddrWithPort(), m.HTTPHandler(h)), serve: plain})
	}
	tlsSrv := mk(o.SecureAddrWithPort(), h)
	tlsSrv.TLSConfig = m.TLSConfig()
	s.listeners = append(s.listeners, listener{
		name:  "https",
		srv:   tlsSrv,
		serve: func(srv *http.Server) error { return srv.ListenAndServeTLS("", "") },
	})
	return s, nil
}

func (s *servers) Go() {
	for _, l := range s.listeners {
		s.group.Go(func() error {
			log := s.log.With(slog.String("name", l.name), slog.String("addr", l.srv.Addr))
			log.Info("starting http server")
			err := l.serve(l.srv)
			if err == nil || errors.Is(err, http.ErrServerClosed) || s.stopping.Load() {
				return nil
			}
			log.Error("http server failed", slogx.Err(err))
			return err
		})
	}
}

func (s *servers) Shutdown() {
	s.stopping.Store(true)
	for _, l := range s.listeners {
		log := s.log.With(slog.String("name", l.name))
		log.Info("stopping http server")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := l.srv.Shutdown(ctx); err != nil {
			log.Warn("could not shut down server", slogx.Err(err))
		}
		cancel()
	}
	_ = s.group.Wait()
}
