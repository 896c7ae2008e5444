package webui

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/xtesports/xtesports/internal/userauth"
	"github.com/xtesports/xtesports/internal/util/httputil"
	"github.com/xtesports/xtesports/internal/util/slogx"
)

type loginData struct {
	Username string
	Error    string
}

type loginDataBuilder struct{}

func (loginDataBuilder) Build(ctx context.Context, bc *builderCtx) (any, error) {
	req := bc.Req
	cfg := bc.Config
	log := bc.Log

	if bc.Identity != nil && bc.Identity.IsAdmin {
		return nil, bc.Redirect("/admin")
	}

	switch req.Method {
	case http.MethodGet, http.MethodHead:
		return &loginData{}, nil
	case http.MethodPost:
		if err := req.ParseForm(); err != nil {
			return nil, httputil.MakeError(http.StatusBadRequest, "bad form data")
		}
		username := strings.TrimSpace(req.FormValue("username"))
		password := req.FormValue("password")
		if !cfg.loginLimiter.Allow(bc.ClientAddr()) {
			log.Warn("login rate limited", slog.String("client", bc.ClientAddr()))
			return nil, httputil.MakeError(http.StatusTooManyRequests, "too many login attempts, try again later")
		}
		user, err := cfg.UserManager.Authenticate(ctx, username, password)
		if err != nil {
			if !errors.Is(err, userauth.ErrInvalidCredentials) {
				log.Error("could not authenticate", slogx.Err(err))
			}
			return &loginData{Username: username, Error: "Invalid credentials"}, nil
		}
		log.Info("user logged in", slog.String("username", user.Username))
		id := user.Identity()
		bc.ResetSession(&id)
		if !id.IsAdmin {
			return nil, bc.Redirect("/")
		}
		return nil, bc.Redirect("/admin")
	default:
		return nil, httputil.MakeError(http.StatusMethodNotAllowed, "method not allowed")
	}
}

func loginPage(log *slog.Logger, cfg *Config, templ *templator) (http.Handler, error) {
	return newPage(log, cfg, pageOptions{}, templ, loginDataBuilder{}, "login")
}

type logoutDataBuilder struct{}

func (logoutDataBuilder) Build(_ context.Context, bc *builderCtx) (any, error) {
	bc.ResetSession(nil)
	return nil, bc.Redirect("/")
}

func logoutPage(log *slog.Logger, cfg *Config, templ *templator) (http.Handler, error) {
	return newPage(log, cfg, pageOptions{}, templ, logoutDataBuilder{}, "")
}
