package webui

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xtesports/xtesports/internal/tournament"
	"github.com/xtesports/xtesports/internal/util/httputil"
)

type mainData struct {
	Tournaments []tournament.Tournament
	Settings    tournament.Settings
	Message     string
}

func buildMainData(ctx context.Context, bc *builderCtx, message string) (*mainData, error) {
	reg := bc.Config.Registrar
	ts, err := reg.ListTournaments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	settings, err := reg.Settings(ctx)
	if err != nil {
		return nil, err
	}
	return &mainData{
		Tournaments: ts,
		Settings:    settings,
		Message:     message,
	}, nil
}

// mainWithMessage shows the tournament list with a notice on top, from any page.
func mainWithMessage(ctx context.Context, bc *builderCtx, message string) (any, error) {
	d, err := buildMainData(ctx, bc, message)
	if err != nil {
		return nil, err
	}
	return &otherTemplate{Name: "main", Data: d}, nil
}

type mainDataBuilder struct{}

func (mainDataBuilder) Build(ctx context.Context, bc *builderCtx) (any, error) {
	return buildMainData(ctx, bc, "")
}

func mainPage(log *slog.Logger, cfg *Config, templ *templator) (http.Handler, error) {
	return newPage(log, cfg, pageOptions{}, templ, mainDataBuilder{}, "main")
}

type e404DataBuilder struct{}

func (e404DataBuilder) Build(context.Context, *builderCtx) (any, error) {
	return nil, httputil.MakeError(http.StatusNotFound, "page not found")
}

func e404Page(log *slog.Logger, cfg *Config, templ *templator) (http.Handler, error) {
	return newPage(log, cfg, pageOptions{}, templ, e404DataBuilder{}, "")
}
