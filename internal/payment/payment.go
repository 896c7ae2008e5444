package payment

import (
	"context"
	"errors"

	"github.com/xtesports/xtesports/internal/notify"
	"github.com/xtesports/xtesports/internal/tournament"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrPayment    = errors.New("payment provider failure")
)

type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }
func (e *requestError) Unwrap() error { return ErrBadRequest }

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

type DB interface {
	GetTournament(ctx context.Context, id uint) (tournament.Tournament, error)
	GetParticipant(ctx context.Context, id uint) (tournament.Participant, error)
	ListSettings(ctx context.Context) ([]tournament.Setting, error)
	SetCheckoutSession(ctx context.Context, participantID uint, sessionID string) error
	// RecordHostedPayment stores the payment and marks its participant as paid. It reports
	// false without writing anything if a payment with the same provider reference exists.
	RecordHostedPayment(ctx context.Context, p *tournament.Payment) (bool, error)
	// RecordManualPayment stores the payment and, if given, the proof upload linked to it.
	RecordManualPayment(ctx context.Context, p *tournament.Payment, upload *tournament.Upload) error
}

type Notifier interface {
	Notify(msgs ...notify.Message)
}

type Options struct {
	HostedCurrency string `toml:"hosted-currency"`
	ManualCurrency string `toml:"manual-currency"`
	CommunityURL   string `toml:"community-url"`
	StripeKey      string `toml:"-"`
}

func (o *Options) FillDefaults() {
	if o.HostedCurrency == "" {
		o.HostedCurrency = "usd"
	}
	if o.ManualCurrency == "" {
		o.ManualCurrency = "INR"
	}
}
