package webui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/xtesports/xtesports/internal/userauth"
	"github.com/xtesports/xtesports/internal/util/httputil"
	"github.com/xtesports/xtesports/internal/util/slogx"
)

type dataBuilder interface {
	Build(ctx context.Context, bc *builderCtx) (any, error)
}

type pageOptions struct {
	RequireAdmin bool
}

type page struct {
	name      string
	cfg       *Config
	pageOpts  pageOptions
	log       *slog.Logger
	b         dataBuilder
	templator *templator
	tmpl      *template.Template
	errTmpl   *template.Template
}

// otherTemplate makes a builder render its data with another page template.
type otherTemplate struct {
	Name string
	Data any
}

type pageData struct {
	Data      any
	User      *userauth.Identity
	CSRFField template.HTML
}

type builderCtx struct {
	Log      *slog.Logger
	Config   *Config
	Identity *userauth.Identity
	Req      *http.Request
	writer   http.ResponseWriter
	session  *sessions.Session
}

func (bc *builderCtx) Redirect(path string) error {
	return httputil.MakeRedirectError(http.StatusSeeOther, "redirect", bc.Config.prefix+path)
}

func (bc *builderCtx) BaseURL() string {
	if u := bc.Config.opts.PublicURL; u != "" {
		return strings.TrimSuffix(u, "/")
	}
	return httputil.BaseURL(bc.Req, bc.Config.opts.TrustProxy) + bc.Config.prefix
}

func (bc *builderCtx) ClientAddr() string {
	return httputil.ClientAddr(bc.Req, bc.Config.opts.TrustProxy)
}

// ResetSession drops the current session and starts a new one holding the given identity.
func (bc *builderCtx) ResetSession(id *userauth.Identity) {
	log := bc.Log
	store := bc.Config.sessionStore
	if bc.session != nil {
		bc.session.Options.MaxAge = -1
		clear(bc.session.Values)
		if err := bc.session.Save(bc.Req, bc.writer); err != nil {
			log.Error("expire current session", slogx.Err(err))
		}
	}
	bc.session = nil
	bc.Identity = nil
	if id == nil {
		return
	}
	session, _ := store.New(bc.Req, sessionName)
	bc.Config.opts.Session.SetupSession(session.Options)
	session.Values[sessionIdentity] = *id
	if err := session.Save(bc.Req, bc.writer); err != nil {
		log.Error("apply new session", slogx.Err(err))
		return
	}
	bc.session = session
	idCopy := *id
	bc.Identity = &idCopy
}

func (p *page) renderError(log *slog.Logger, w http.ResponseWriter, httpErr *httputil.Error) {
	if httpErr.IsRedirect() {
		log.Info("send http redirect",
			slog.Int("code", httpErr.Code()),
			slog.String("msg", httpErr.Message()),
		)
		httpErr.ApplyHeaders(w)
		w.WriteHeader(httpErr.Code())
		return
	}

	log.Info("send http status error",
		slog.Int("code", httpErr.Code()),
		slog.String("msg", httpErr.Message()),
	)
	var b bytes.Buffer
	if err := p.errTmpl.ExecuteTemplate(&b, "base", pageData{
		Data: struct {
			Code    int
			Message string
		}{
			Code:    httpErr.Code(),
			Message: httpErr.Message(),
		},
	}); err != nil {
		log.Error("error rendering page", slogx.Err(err))
		writeHTTPErr(log, w, fmt.Errorf("render page"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	httpErr.ApplyHeaders(w)
	w.WriteHeader(httpErr.Code())
	if _, err := w.Write(b.Bytes()); err != nil {
		log.Error("error writing page data", slogx.Err(err))
		return
	}
}

func (p *page) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	log := p.log.With(slog.String("rid", httputil.RequestID(ctx)))
	log.Info("handle page request",
		slog.String("method", req.Method),
		slog.String("addr", req.RemoteAddr),
	)

	if req.Method != http.MethodGet && req.Method != http.MethodPost && req.Method != http.MethodHead {
		log.Warn("method not allowed")
		writeHTTPErr(log, w, httputil.MakeError(http.StatusMethodNotAllowed, "method not allowed"))
		return
	}

	session, err := p.cfg.sessionStore.Get(req, sessionName)
	if err != nil {
		log.Info("dropping unreadable session", slogx.Err(err))
	}
	bc := &builderCtx{
		Log:      log,
		Config:   p.cfg,
		Identity: identityFromSession(session),
		Req:      req,
		writer:   w,
		session:  session,
	}

	var data any
	if p.pageOpts.RequireAdmin && (bc.Identity == nil || !bc.Identity.IsAdmin) {
		err = bc.Redirect("/auth/login")
	} else {
		data, err = p.b.Build(ctx, bc)
	}
	if err != nil {
		if httpErr := (*httputil.Error)(nil); errors.As(err, &httpErr) {
			p.renderError(log, w, httpErr)
			return
		}
		if httpErr := plainError(log, err); httpErr != nil {
			writeHTTPErr(log, w, httpErr)
			return
		}
		log.Error("error building page data", slogx.Err(err))
		writeHTTPErr(log, w, fmt.Errorf("build page"))
		return
	}

	tmpl := p.tmpl
	if other, ok := data.(*otherTemplate); ok {
		tmpl, err = p.templator.Get(other.Name)
		if err != nil {
			log.Error("could not load template", slogx.Err(err))
			writeHTTPErr(log, w, fmt.Errorf("render page"))
			return
		}
		data = other.Data
	}
	if tmpl == nil {
		log.Error("page has no template")
		writeHTTPErr(log, w, fmt.Errorf("render page"))
		return
	}

	var b bytes.Buffer
	if err := tmpl.ExecuteTemplate(&b, "base", pageData{
		Data:      data,
		User:      bc.Identity,
		CSRFField: csrf.TemplateField(req),
	}); err != nil {
		log.Error("error rendering page", slogx.Err(err))
		writeHTTPErr(log, w, fmt.Errorf("render page"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(b.Bytes()); err != nil {
		log.Error("error writing page data", slogx.Err(err))
		return
	}
}

func newPage(
	log *slog.Logger,
	cfg *Config,
	pageOpts pageOptions,
	templator *templator,
	builder dataBuilder,
	name string,
) (http.Handler, error) {
	errTempl, err := templator.Get("error")
	if err != nil {
		return nil, fmt.Errorf("template \"error\": %w", err)
	}
	var tmpl *template.Template
	if name != "" {
		tmpl, err = templator.Get(name)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", name, err)
		}
	}
	return &page{
		name:      name,
		cfg:       cfg,
		pageOpts:  pageOpts,
		log:       log.With(slog.String("page", name)),
		b:         builder,
		templator: templator,
		tmpl:      tmpl,
		errTmpl:   errTempl,
	}, nil
}
