package webui

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xtesports/xtesports/internal/admin"
	"github.com/xtesports/xtesports/internal/tournament"
	"github.com/xtesports/xtesports/internal/util/httputil"
)

var adminOnly = pageOptions{RequireAdmin: true}

type adminDashboardDataBuilder struct{}

func (adminDashboardDataBuilder) Build(ctx context.Context, bc *builderCtx) (any, error) {
	ts, err := bc.Config.Admin.ListTournaments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return struct{ Tournaments []tournament.Tournament }{Tournaments: ts}, nil
}

func adminDashboardPage(log *slog.Logger, cfg *Config, templ *templator) (http.Handler, error) {
	return newPage(log, cfg, adminOnly, templ, adminDashboardDataBuilder{}, "admin_dashboard")
}

type adminTournamentsData struct {
	Tournaments []tournament.Tournament
	Settings    tournament.Settings
	Form        admin.TournamentForm
	Errors      []string
}

// formAsset reads an optional image upload. The caller closes the returned file.
func formAsset(req *http.Request, field string) (*admin.Asset, func(), error) {
	f, h, err := formFile(req, field)
	if err != nil || f == nil {
		return nil, func() {}, err
	}
	return &admin.Asset{
		Name:        h.Filename,
		ContentType: h.Header.Get("Content-Type"),
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

type adminTournamentsDataBuilder struct{}

func (adminTournamentsDataBuilder) Build(ctx context.Context, bc *builderCtx) (any, error) {
	req := bc.Req
	svc := bc.Config.Admin

	data := &adminTournamentsData{}
	load := func() error {
		ts, err := svc.ListTournaments(ctx)
		if err != nil {
			return fmt.Errorf("list tournaments: %w", err)
		}
		settings, err := svc.Settings(ctx)
		if err != nil {
			return err
		}
		data.Tournaments = ts
		data.Settings = settings
		return nil
	}

	switch req.Method {
	case http.MethodGet, http.MethodHead:
		if err := load(); err != nil {
			return nil, err
		}
		return data, nil
	case http.MethodPost:
		if err := parseMultipart(bc); err != nil {
			return nil, err
		}
		form := admin.TournamentForm{
			Name:     req.FormValue("name"),
			Game:     req.FormValue("game"),
			EntryFee: req.FormValue("entry_fee"),
			MaxTeams: req.FormValue("max_teams"),
			Details:  req.FormValue("details"),
		}
		banner, done, err := formAsset(req, "banner")
		if err != nil {
			return nil, err
		}
		defer done()
		if _, err := svc.CreateTournament(ctx, form, banner); err != nil {
			if !isInvalidForm(err) {
				return nil, err
			}
			if err := load(); err != nil {
				return nil, err
			}
			data.Form = form
			data.Errors = []string{err.Error()}
			return data, nil
		}
		return nil, bc.Redirect("/admin/tournaments")
	default:
		return nil, httputil.MakeError(http.StatusMethodNotAllowed, "method not allowed")
	}
}

func adminTournamentsPage(log *slog.Logger, cfg *Config, templ *templator) (http.Handler, error) {
	return newPage(log, cfg, adminOnly, templ, adminTournamentsDataBuilder{}, "admin_tournaments")
}

type adminSettingsDataBuilder struct{}

func (adminSettingsDataBuilder) Build(ctx context.Context, bc *builderCtx) (any, error) {
	req := bc.Req
	if err := parseMultipart(bc); err != nil {
		return nil, err
	}
	qr, doneQR, err := formAsset(req, "payment_qr")
	if err != nil {
		return nil, err
	}
	defer doneQR()
	banner, doneBanner, err := formAsset(req, "site_banner")
	if err != nil {
		return nil, err
	}
	defer doneBanner()
	if err := bc.Config.Admin.UpdateSettings(ctx, admin.SettingsForm{
		UPI:        req.FormValue("upi"),
		PaymentQR:  qr,
		SiteBanner: banner,
	}); err != nil {
		return nil, err
	}
	return nil, bc.Redirect("/admin/tournaments")
}

func adminSettingsPage(log *slog.Logger, cfg *Config, templ *templator) (http.Handler, error) {
	return newPage(log, cfg, adminOnly, templ, adminSettingsDataBuilder{}, "")
}

type adminParticipantsDataBuilder struct{}

func (adminParticipantsDataBuilder) Build(ctx context.Context, bc *builderCtx) (any, error) {
	ps, err := bc.Config.Admin.ListParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return struct{ Participants []tournament.Participant }{Participants: ps}, nil
}

func adminParticipantsPage(log *slog.Logger, cfg *Config, templ *templator) (http.Handler, error) {
	return newPage(log, cfg, adminOnly, templ, adminParticipantsDataBuilder{}, "admin_participants")
}

type adminVerifyDataBuilder struct{}

func (adminVerifyDataBuilder) Build(ctx context.Context, bc *builderCtx) (any, error) {
	id, err := pathID(bc.Req)
	if err != nil {
		return nil, err
	}
	if err := bc.Config.Admin.VerifyParticipant(ctx, id); err != nil {
		return nil, err
	}
	return nil, bc.Redirect("/admin/participants")
}

func adminVerifyPage(log *slog.Logger, cfg *Config, templ *templator) (http.Handler, error) {
	return newPage(log, cfg, adminOnly, templ, adminVerifyDataBuilder{}, "")
}

type adminUsersItem struct {
	ID       uint
	Username string
	IsAdmin  bool
}

type adminUsersDataBuilder struct{}

func (adminUsersDataBuilder) Build(ctx context.Context, bc *builderCtx) (any, error) {
	users, err := bc.Config.Admin.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	items := make([]adminUsersItem, len(users))
	for i, u := range users {
		items[i] = adminUsersItem{
			ID:       u.ID,
			Username: u.Username,
			IsAdmin:  u.IsAdmin,
		}
	}
	return struct{ Users []adminUsersItem }{Users: items}, nil
}

func adminUsersPage(log *slog.Logger, cfg *Config, templ *templator) (http.Handler, error) {
	return newPage(log, cfg, adminOnly, templ, adminUsersDataBuilder{}, "admin_users")
}
