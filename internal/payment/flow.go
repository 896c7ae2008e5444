package payment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/xtesports/xtesports/internal/storage"
	"github.com/xtesports/xtesports/internal/tournament"
	"github.com/xtesports/xtesports/internal/util/slogx"
	"github.com/xtesports/xtesports/internal/util/timeutil"
)

type Config struct {
	DB         DB
	Provider   Provider
	Notifier   Notifier
	Uploads    storage.Store
	AdminEmail string
}

// Flow drives a participant from registration to a recorded payment, either through the hosted
// checkout or through a manually uploaded proof.
type Flow struct {
	db         DB
	provider   Provider
	notifier   Notifier
	uploads    storage.Store
	adminEmail string
	o          Options
	log        *slog.Logger
}

func NewFlow(log *slog.Logger, cfg Config, o Options) *Flow {
	o.FillDefaults()
	return &Flow{
		db:         cfg.DB,
		provider:   cfg.Provider,
		notifier:   cfg.Notifier,
		uploads:    cfg.Uploads,
		adminEmail: cfg.AdminEmail,
		o:          o,
		log:        log,
	}
}

func (f *Flow) HostedEnabled() bool {
	return f.provider != nil
}

func (f *Flow) notify(k mailKind, d mailData) {
	msgs, err := buildMails(k, f.adminEmail, d)
	if err != nil {
		f.log.Error("could not build notifications", slogx.Err(err))
		return
	}
	f.notifier.Notify(msgs...)
}

func (f *Flow) resolve(ctx context.Context, participantID, tournamentID uint) (tournament.Participant, tournament.Tournament, error) {
	p, err := f.db.GetParticipant(ctx, participantID)
	if err != nil {
		return tournament.Participant{}, tournament.Tournament{}, err
	}
	t, err := f.db.GetTournament(ctx, tournamentID)
	if err != nil {
		return tournament.Participant{}, tournament.Tournament{}, err
	}
	if p.TournamentID != t.ID {
		return tournament.Participant{}, tournament.Tournament{}, badRequest("Invalid request")
	}
	return p, t, nil
}

// StartCheckout opens a provider session for the entry fee and returns the URL to send the
// browser to. Without a provider it points to the manual payment page instead.
func (f *Flow) StartCheckout(ctx context.Context, participantID, tournamentID uint, baseURL string) (string, error) {
	if participantID == 0 || tournamentID == 0 {
		return "", badRequest("Invalid request")
	}
	p, t, err := f.resolve(ctx, participantID, tournamentID)
	if err != nil {
		return "", err
	}
	if f.provider == nil {
		return tournament.ManualPayURL(t.ID, p.ID), nil
	}

	pid := strconv.FormatUint(uint64(p.ID), 10)
	session, err := f.provider.CreateSession(ctx, CheckoutRequest{
		ProductName:     t.Name,
		Amount:          t.EntryFee,
		Currency:        f.o.HostedCurrency,
		SuccessURL:      baseURL + "/payments/success?session_id={CHECKOUT_SESSION_ID}&participant=" + url.QueryEscape(pid),
		CancelURL:       baseURL + "/payments/cancel?participant=" + url.QueryEscape(pid),
		ClientReference: pid,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPayment, err)
	}
	if err := f.db.SetCheckoutSession(ctx, p.ID, session.ID); err != nil {
		return "", fmt.Errorf("save checkout session: %w", err)
	}
	f.log.Info("checkout session created",
		slog.Uint64("participant_id", uint64(p.ID)),
		slog.String("session_id", session.ID),
	)
	return session.URL, nil
}

type Confirmation struct {
	Participant tournament.Participant
	Tournament  tournament.Tournament
	Payment     tournament.Payment
	Duplicate   bool
}

// ConfirmCheckout handles the provider's success callback. Replaying it for the same provider
// payment does not record a second payment.
func (f *Flow) ConfirmCheckout(ctx context.Context, sessionID string, participantID uint, baseURL string) (Confirmation, error) {
	if sessionID == "" {
		return Confirmation{}, badRequest("Missing session")
	}
	if participantID == 0 {
		return Confirmation{}, badRequest("Missing participant id")
	}
	if f.provider == nil {
		return Confirmation{}, fmt.Errorf("%w: hosted checkout is not configured", ErrPayment)
	}
	p, err := f.db.GetParticipant(ctx, participantID)
	if err != nil {
		return Confirmation{}, err
	}
	// Only the session opened for this participant can confirm it.
	if p.CheckoutSessionID == nil || *p.CheckoutSessionID != sessionID {
		return Confirmation{}, badRequest("Session does not belong to this participant")
	}
	t, err := f.db.GetTournament(ctx, p.TournamentID)
	if err != nil {
		return Confirmation{}, err
	}
	session, err := f.provider.GetSession(ctx, sessionID)
	if err != nil {
		return Confirmation{}, fmt.Errorf("%w: %w", ErrPayment, err)
	}

	ref := session.PaymentIntentID
	if ref == "" {
		ref = session.ID
	}
	currency := session.Currency
	if currency == "" {
		currency = f.o.HostedCurrency
	}
	status := session.PaymentStatus
	if status == "" {
		status = tournament.PaymentPaid
	}
	pay := tournament.Payment{
		ParticipantID: p.ID,
		Amount:        session.AmountTotal,
		Currency:      currency,
		ProviderRef:   &ref,
		Status:        status,
		CreatedAt:     timeutil.NowUTC(),
	}
	created, err := f.db.RecordHostedPayment(ctx, &pay)
	if err != nil {
		return Confirmation{}, fmt.Errorf("record payment: %w", err)
	}
	if !created && pay.ParticipantID != p.ID {
		f.log.Warn("provider payment already recorded for another participant",
			slog.Uint64("participant_id", uint64(p.ID)),
			slog.Uint64("owner_id", uint64(pay.ParticipantID)),
			slog.String("provider_ref", ref),
		)
		return Confirmation{}, badRequest("Payment belongs to another participant")
	}
	p.Paid = true

	res := Confirmation{
		Participant: p,
		Tournament:  t,
		Payment:     pay,
		Duplicate:   !created,
	}
	if !created {
		f.log.Info("checkout already confirmed",
			slog.Uint64("participant_id", uint64(p.ID)),
			slog.String("provider_ref", ref),
		)
		return res, nil
	}
	f.log.Info("checkout confirmed",
		slog.Uint64("participant_id", uint64(p.ID)),
		slog.Uint64("payment_id", uint64(pay.ID)),
		slog.String("status", status),
	)
	f.notify(hostedMails, mailData{
		P:            p,
		T:            t,
		AdminURL:     baseURL + "/admin/participants",
		CommunityURL: f.o.CommunityURL,
	})
	return res, nil
}

// CancelCheckout only records that the participant left the provider page. The participant stays
// unpaid and may start over.
func (f *Flow) CancelCheckout(ctx context.Context, participantID uint) {
	f.log.InfoContext(ctx, "checkout cancelled", slog.Uint64("participant_id", uint64(participantID)))
}

type ManualPayView struct {
	Tournament    tournament.Tournament
	ParticipantID uint
	Settings      tournament.Settings
}

func (f *Flow) ManualPayPage(ctx context.Context, tournamentID, participantID uint) (ManualPayView, error) {
	t, err := f.db.GetTournament(ctx, tournamentID)
	if err != nil {
		return ManualPayView{}, err
	}
	if participantID == 0 {
		return ManualPayView{}, badRequest("Missing participant id")
	}
	if _, err := f.db.GetParticipant(ctx, participantID); err != nil {
		return ManualPayView{}, err
	}
	rows, err := f.db.ListSettings(ctx)
	if err != nil {
		return ManualPayView{}, fmt.Errorf("list settings: %w", err)
	}
	return ManualPayView{
		Tournament:    t,
		ParticipantID: participantID,
		Settings:      tournament.SettingsFromRows(rows),
	}, nil
}

type ProofFile struct {
	Name        string
	ContentType string
	Body        io.Reader
}

type ManualProof struct {
	ParticipantID uint
	File          *ProofFile
}

type ManualReceipt struct {
	Payment tournament.Payment
	Upload  *tournament.Upload
}

// SubmitManualProof records a pending payment for the tournament's entry fee. The participant
// stays unpaid until an admin verifies the proof.
func (f *Flow) SubmitManualProof(ctx context.Context, tournamentID uint, proof ManualProof, baseURL string) (ManualReceipt, error) {
	t, err := f.db.GetTournament(ctx, tournamentID)
	if err != nil {
		return ManualReceipt{}, err
	}
	if proof.ParticipantID == 0 {
		return ManualReceipt{}, badRequest("Missing participant id")
	}
	p, err := f.db.GetParticipant(ctx, proof.ParticipantID)
	if err != nil {
		return ManualReceipt{}, err
	}
	if p.TournamentID != t.ID {
		return ManualReceipt{}, badRequest("Participant is not registered for this tournament")
	}

	var upload *tournament.Upload
	var proofURL string
	if proof.File != nil {
		file, err := f.uploads.Save(ctx, proof.File.Name, proof.File.Body, proof.File.ContentType)
		if err != nil {
			return ManualReceipt{}, fmt.Errorf("store proof: %w", err)
		}
		upload = &tournament.Upload{
			Filename:      file.Name,
			OriginalName:  proof.File.Name,
			ParticipantID: &p.ID,
			UploadedAt:    timeutil.NowUTC(),
		}
		proofURL = file.Path
		if strings.HasPrefix(proofURL, "/") {
			proofURL = baseURL + proofURL
		}
	}

	pay := tournament.Payment{
		ParticipantID: p.ID,
		Amount:        t.EntryFee,
		Currency:      f.o.ManualCurrency,
		ProviderRef:   nil,
		Status:        tournament.PaymentPending,
		CreatedAt:     timeutil.NowUTC(),
	}
	if err := f.db.RecordManualPayment(ctx, &pay, upload); err != nil {
		return ManualReceipt{}, fmt.Errorf("record payment: %w", err)
	}
	f.log.Info("manual payment submitted",
		slog.Uint64("participant_id", uint64(p.ID)),
		slog.Uint64("payment_id", uint64(pay.ID)),
		slog.Bool("with_proof", upload != nil),
	)
	f.notify(manualMails, mailData{
		P:            p,
		T:            t,
		AdminURL:     baseURL + "/admin/participants",
		ProofURL:     proofURL,
		CommunityURL: f.o.CommunityURL,
	})
	return ManualReceipt{Payment: pay, Upload: upload}, nil
}
