package webui

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/xtesports/xtesports/internal/util/httputil"
)

const (
	checkoutDoneMessage      = "Payment successful — registration complete"
	checkoutCancelledMessage = "Payment canceled. You can retry the registration from your tournaments page."
)

type createCheckoutDataBuilder struct{}

func (createCheckoutDataBuilder) Build(ctx context.Context, bc *builderCtx) (any, error) {
	q := bc.Req.URL.Query()
	url, err := bc.Config.Payments.StartCheckout(
		ctx,
		parseID(q.Get("participant")),
		parseID(q.Get("tournament")),
		bc.BaseURL(),
	)
	if err != nil {
		return nil, err
	}
	return nil, httputil.MakeRedirectError(http.StatusSeeOther, "checkout", url)
}

func createCheckoutPage(log *slog.Logger, cfg *Config, templ *templator) (http.Handler, error) {
	return newPage(log, cfg, pageOptions{}, templ, createCheckoutDataBuilder{}, "")
}

type checkoutSuccessDataBuilder struct{}

func (checkoutSuccessDataBuilder) Build(ctx context.Context, bc *builderCtx) (any, error) {
	q := bc.Req.URL.Query()
	_, err := bc.Config.Payments.ConfirmCheckout(
		ctx,
		q.Get("session_id"),
		parseID(q.Get("participant")),
		bc.BaseURL(),
	)
	if err != nil {
		return nil, err
	}
	return mainWithMessage(ctx, bc, checkoutDoneMessage)
}

func checkoutSuccessPage(log *slog.Logger, cfg *Config, templ *templator) (http.Handler, error) {
	return newPage(log, cfg, pageOptions{}, templ, checkoutSuccessDataBuilder{}, "main")
}

type checkoutCancelDataBuilder struct{}

func (checkoutCancelDataBuilder) Build(ctx context.Context, bc *builderCtx) (any, error) {
	bc.Config.Payments.CancelCheckout(ctx, parseID(bc.Req.URL.Query().Get("participant")))
	return mainWithMessage(ctx, bc, checkoutCancelledMessage)
}

func checkoutCancelPage(log *slog.Logger, cfg *Config, templ *templator) (http.Handler, error) {
	return newPage(log, cfg, pageOptions{}, templ, checkoutCancelDataBuilder{}, "main")
}
