package tournament

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/xtesports/xtesports/internal/util/timeutil"
)

type Registration struct {
	ParticipantID uint
	TournamentID  uint
	PayMethod     PayMethod
}

// NextURL is where the browser goes after the participant is stored.
func (r Registration) NextURL() string {
	if r.PayMethod == PayManual {
		return ManualPayURL(r.TournamentID, r.ParticipantID)
	}
	q := url.Values{}
	q.Set("participant", strconv.FormatUint(uint64(r.ParticipantID), 10))
	q.Set("tournament", strconv.FormatUint(uint64(r.TournamentID), 10))
	return "/payments/create-checkout?" + q.Encode()
}

func ManualPayURL(tournamentID, participantID uint) string {
	return fmt.Sprintf("/tournaments/%d/manual-pay?participant=%d", tournamentID, participantID)
}

type Registrar struct {
	db       DB
	log      *slog.Logger
	validate *validator.Validate
}

func NewRegistrar(log *slog.Logger, db DB) *Registrar {
	return &Registrar{
		db:       db,
		log:      log,
		validate: newValidator(),
	}
}

func (r *Registrar) Tournament(ctx context.Context, id uint) (Tournament, error) {
	return r.db.GetTournament(ctx, id)
}

func (r *Registrar) ListTournaments(ctx context.Context) ([]Tournament, error) {
	return r.db.ListTournaments(ctx)
}

func (r *Registrar) Settings(ctx context.Context) (Settings, error) {
	rows, err := r.db.ListSettings(ctx)
	if err != nil {
		return Settings{}, fmt.Errorf("list settings: %w", err)
	}
	return SettingsFromRows(rows), nil
}

// Register validates the form and stores a new unpaid participant. Nothing is written if the
// form is rejected.
func (r *Registrar) Register(ctx context.Context, tournamentID uint, form RegistrationForm) (Registration, error) {
	t, err := r.db.GetTournament(ctx, tournamentID)
	if err != nil {
		return Registration{}, err
	}
	if err := validateForm(r.validate, form); err != nil {
		return Registration{}, err
	}
	f := form.trimmed()
	p := &Participant{
		TournamentID: t.ID,
		TeamName:     f.TeamName,
		LeaderName:   f.LeaderName,
		LeaderPhone:  f.LeaderPhone,
		LeaderEmail:  f.LeaderEmail,
		Members:      f.Members,
		InGame:       f.InGame,
		Paid:         false,
		CreatedAt:    timeutil.NowUTC(),
	}
	if err := r.db.CreateParticipant(ctx, p); err != nil {
		return Registration{}, fmt.Errorf("create participant: %w", err)
	}
	reg := Registration{
		ParticipantID: p.ID,
		TournamentID:  t.ID,
		PayMethod:     ParsePayMethod(string(form.PayMethod)),
	}
	r.log.Info("participant registered",
		slog.Uint64("participant_id", uint64(p.ID)),
		slog.Uint64("tournament_id", uint64(t.ID)),
		slog.String("pay_method", string(reg.PayMethod)),
	)
	return reg, nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrTournamentNotFound) || errors.Is(err, ErrParticipantNotFound)
}
