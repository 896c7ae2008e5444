package webui

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/xtesports/xtesports/internal/tournament"
	"github.com/xtesports/xtesports/internal/util/httputil"
)

type tournamentData struct {
	Tournament    tournament.Tournament
	Settings      tournament.Settings
	Form          tournament.RegistrationForm
	Errors        []string
	HostedEnabled bool
}

func (d *tournamentData) FormName() string {
	return d.Tournament.Game.FormName()
}

func loadTournamentData(ctx context.Context, bc *builderCtx) (*tournamentData, error) {
	reg := bc.Config.Registrar
	id := parseID(bc.Req.PathValue("id"))
	if id == 0 {
		return nil, tournament.ErrTournamentNotFound
	}
	t, err := reg.Tournament(ctx, id)
	if err != nil {
		return nil, err
	}
	settings, err := reg.Settings(ctx)
	if err != nil {
		return nil, err
	}
	return &tournamentData{
		Tournament:    t,
		Settings:      settings,
		HostedEnabled: bc.Config.Payments.HostedEnabled(),
	}, nil
}

type tournamentDataBuilder struct{}

func (tournamentDataBuilder) Build(ctx context.Context, bc *builderCtx) (any, error) {
	return loadTournamentData(ctx, bc)
}

func tournamentPage(log *slog.Logger, cfg *Config, templ *templator) (http.Handler, error) {
	return newPage(log, cfg, pageOptions{}, templ, tournamentDataBuilder{}, "tournament")
}

type registerDataBuilder struct{}

func (registerDataBuilder) Build(ctx context.Context, bc *builderCtx) (any, error) {
	req := bc.Req
	data, err := loadTournamentData(ctx, bc)
	if err != nil {
		return nil, err
	}
	if err := req.ParseForm(); err != nil {
		return nil, httputil.MakeError(http.StatusBadRequest, "bad form data")
	}
	form := tournament.ParseRegistrationForm(req.PostForm)
	reg, err := bc.Config.Registrar.Register(ctx, data.Tournament.ID, form)
	if err != nil {
		var verr *tournament.ValidationError
		if errors.As(err, &verr) {
			data.Form = verr.Form
			data.Errors = verr.Messages()
			return data, nil
		}
		return nil, err
	}
	return nil, bc.Redirect(reg.NextURL())
}

func registerPage(log *slog.Logger, cfg *Config, templ *templator) (http.Handler, error) {
	return newPage(log, cfg, pageOptions{}, templ, registerDataBuilder{}, "tournament")
}
