package webui

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/xtesports/xtesports/internal/admin"
	"github.com/xtesports/xtesports/internal/payment"
	"github.com/xtesports/xtesports/internal/storage"
	"github.com/xtesports/xtesports/internal/tournament"
	"github.com/xtesports/xtesports/internal/userauth"
	"github.com/xtesports/xtesports/internal/util/idgen"
)

type SessionStoreFactory interface {
	NewSessionStore(keyPairs ...[]byte) sessions.Store
}

// LocalFiles is implemented by upload stores that are served by this process.
type LocalFiles interface {
	URLPrefix() string
	Handler() http.Handler
}

type Config struct {
	Registrar           *tournament.Registrar
	Payments            *payment.Flow
	Admin               *admin.Service
	UserManager         *userauth.Manager
	SessionStoreFactory SessionStoreFactory
	Uploads             storage.Store
	ServerID            string

	prefix       string
	opts         *Options
	sessionStore sessions.Store
	loginLimiter *limiter
}

type CSRFOptions struct {
	Secure   bool   `toml:"secure"`
	Domain   string `toml:"domain"`
	SameSite string `toml:"same-site"`
}

type Options struct {
	Session SessionOptions `toml:"session"`
	CSRF    CSRFOptions    `toml:"csrf"`
	// PublicURL overrides the base URL derived from requests in links sent outside.
	PublicURL       string        `toml:"public-url"`
	TrustProxy      bool          `toml:"trust-proxy"`
	MaxUploadSize   int64         `toml:"max-upload-size"`
	LoginRPSLimit   float64       `toml:"login-rps-limit"`
	LoginBurst      int           `toml:"login-burst"`
	LoginLimiterTTL time.Duration `toml:"login-limiter-ttl"`

	SessionKey []byte `toml:"-"`
	CSRFKey    []byte `toml:"-"`
}

func (o *Options) FillDefaults() {
	o.Session.FillDefaults()
	if o.MaxUploadSize == 0 {
		o.MaxUploadSize = 10 << 20
	}
	if o.LoginRPSLimit == 0.0 {
		o.LoginRPSLimit = 0.2
	}
	if o.LoginBurst == 0 {
		o.LoginBurst = 5
	}
	if o.LoginLimiterTTL == 0 {
		o.LoginLimiterTTL = 30 * time.Minute
	}
}

func parseSameSite(s string) csrf.SameSiteMode {
	switch s {
	case "strict":
		return csrf.SameSiteStrictMode
	case "none":
		return csrf.SameSiteNoneMode
	default:
		return csrf.SameSiteLaxMode
	}
}

func must[T any](t T, err error) T {
	if err != nil {
		panic(err)
	}
	return t
}

func Handle(ctx context.Context, log *slog.Logger, mux *http.ServeMux, prefix string, cfg Config, o Options) error {
	o.FillDefaults()

	if len(o.SessionKey) == 0 || len(o.CSRFKey) == 0 {
		return fmt.Errorf("session and csrf keys must be set")
	}
	if cfg.ServerID == "" {
		cfg.ServerID = idgen.ID()
	}
	cfg.prefix = prefix
	cfg.opts = &o
	cfg.sessionStore = cfg.SessionStoreFactory.NewSessionStore(o.SessionKey)
	cfg.loginLimiter = newLimiter(o.LoginRPSLimit, o.LoginBurst, o.LoginLimiterTTL)
	go cfg.loginLimiter.PruneLoop(ctx)

	csrfPath := prefix
	if csrfPath == "" {
		csrfPath = "/"
	}
	b := middlewareBuilder{
		Log:    log,
		Prefix: prefix,
		CSRFProtect: csrf.Protect(
			o.CSRFKey,
			csrf.Secure(o.CSRF.Secure),
			csrf.Domain(o.CSRF.Domain),
			csrf.Path(csrfPath),
			csrf.SameSite(parseSameSite(o.CSRF.SameSite)),
			csrf.FieldName("csrf_token"),
			csrf.ErrorHandler(http.HandlerFunc(csrfFailure(log))),
		),
		Compress:    gziphandler.GzipHandler,
		MaxBodySize: o.MaxUploadSize,
	}
	templ := newTemplator(&cfg)

	mux.Handle(prefix+"/css/", b.WrapStatic(http.FileServerFS(staticData)))
	if local, ok := cfg.Uploads.(LocalFiles); ok {
		mux.Handle(prefix+local.URLPrefix()+"/", b.WrapStatic(http.StripPrefix(prefix, local.Handler())))
	}

	mux.Handle(prefix+"/{$}", b.WrapPage(must(mainPage(log, &cfg, templ))))
	mux.Handle(prefix+"/auth/login", b.WrapPage(must(loginPage(log, &cfg, templ))))
	mux.Handle("POST "+prefix+"/auth/logout", b.WrapPage(must(logoutPage(log, &cfg, templ))))

	mux.Handle("GET "+prefix+"/tournaments/{id}", b.WrapPage(must(tournamentPage(log, &cfg, templ))))
	mux.Handle("POST "+prefix+"/tournaments/{id}/register", b.WrapPage(must(registerPage(log, &cfg, templ))))
	mux.Handle(prefix+"/tournaments/{id}/manual-pay", b.WrapPage(must(manualPayPage(log, &cfg, templ))))

	mux.Handle("GET "+prefix+"/payments/create-checkout", b.WrapPage(must(createCheckoutPage(log, &cfg, templ))))
	mux.Handle("GET "+prefix+"/payments/success", b.WrapPage(must(checkoutSuccessPage(log, &cfg, templ))))
	mux.Handle("GET "+prefix+"/payments/cancel", b.WrapPage(must(checkoutCancelPage(log, &cfg, templ))))

	mux.Handle("GET "+prefix+"/admin", b.WrapPage(must(adminDashboardPage(log, &cfg, templ))))
	mux.Handle(prefix+"/admin/tournaments", b.WrapPage(must(adminTournamentsPage(log, &cfg, templ))))
	mux.Handle("POST "+prefix+"/admin/settings", b.WrapPage(must(adminSettingsPage(log, &cfg, templ))))
	mux.Handle("GET "+prefix+"/admin/participants", b.WrapPage(must(adminParticipantsPage(log, &cfg, templ))))
	mux.Handle("POST "+prefix+"/admin/participants/{id}/verify", b.WrapPage(must(adminVerifyPage(log, &cfg, templ))))
	mux.Handle("GET "+prefix+"/admin/users", b.WrapPage(must(adminUsersPage(log, &cfg, templ))))
	mux.Handle("GET "+prefix+"/admin/uploads", b.WrapAttach(must(adminUploadsAttach(log, &cfg))))

	mux.Handle(prefix+"/", b.WrapPage(must(e404Page(log, &cfg, templ))))
	return nil
}
