package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xtesports/xtesports/internal/storage"
	"github.com/xtesports/xtesports/internal/tournament"
	"github.com/xtesports/xtesports/internal/userauth"
)

type DB interface {
	ListTournaments(ctx context.Context) ([]tournament.Tournament, error)
	CreateTournament(ctx context.Context, t *tournament.Tournament) error
	ListSettings(ctx context.Context) ([]tournament.Setting, error)
	UpsertSettings(ctx context.Context, settings []tournament.Setting) error
	// ListParticipantsFull returns participants newest first, with their tournament and payments
	// loaded.
	ListParticipantsFull(ctx context.Context) ([]tournament.Participant, error)
	// VerifyParticipant marks the participant as paid and confirms all of its payments.
	VerifyParticipant(ctx context.Context, participantID uint) error
	ListUsers(ctx context.Context) ([]userauth.User, error)
}

type Service struct {
	db      DB
	uploads storage.Store
	log     *slog.Logger
}

func NewService(log *slog.Logger, db DB, uploads storage.Store) *Service {
	return &Service{
		db:      db,
		uploads: uploads,
		log:     log,
	}
}

func (s *Service) ListTournaments(ctx context.Context) ([]tournament.Tournament, error) {
	return s.db.ListTournaments(ctx)
}

func (s *Service) Settings(ctx context.Context) (tournament.Settings, error) {
	rows, err := s.db.ListSettings(ctx)
	if err != nil {
		return tournament.Settings{}, fmt.Errorf("list settings: %w", err)
	}
	return tournament.SettingsFromRows(rows), nil
}

func (s *Service) saveAsset(ctx context.Context, a *Asset) (string, error) {
	f, err := s.uploads.Save(ctx, a.Name, a.Body, a.ContentType)
	if err != nil {
		return "", fmt.Errorf("store %q: %w", a.Name, err)
	}
	return f.Path, nil
}

func (s *Service) CreateTournament(ctx context.Context, form TournamentForm, banner *Asset) (tournament.Tournament, error) {
	t, err := form.toTournament()
	if err != nil {
		return tournament.Tournament{}, err
	}
	if banner != nil {
		path, err := s.saveAsset(ctx, banner)
		if err != nil {
			return tournament.Tournament{}, err
		}
		t.Banner = &path
	}
	if err := s.db.CreateTournament(ctx, &t); err != nil {
		return tournament.Tournament{}, fmt.Errorf("create tournament: %w", err)
	}
	s.log.Info("tournament created",
		slog.Uint64("tournament_id", uint64(t.ID)),
		slog.String("name", t.Name),
		slog.String("game", string(t.Game)),
	)
	return t, nil
}

func (s *Service) UpdateSettings(ctx context.Context, form SettingsForm) error {
	var rows []tournament.Setting
	if upi := strings.TrimSpace(form.UPI); upi != "" {
		rows = append(rows, tournament.Setting{Key: tournament.SettingUPI, Value: upi})
	}
	for _, a := range []struct {
		key   string
		asset *Asset
	}{
		{tournament.SettingPaymentQR, form.PaymentQR},
		{tournament.SettingSiteBanner, form.SiteBanner},
	} {
		if a.asset == nil {
			continue
		}
		path, err := s.saveAsset(ctx, a.asset)
		if err != nil {
			return err
		}
		rows = append(rows, tournament.Setting{Key: a.key, Value: path})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := s.db.UpsertSettings(ctx, rows); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	s.log.Info("settings updated", slog.Int("count", len(rows)))
	return nil
}

func (s *Service) ListParticipants(ctx context.Context) ([]tournament.Participant, error) {
	return s.db.ListParticipantsFull(ctx)
}

func (s *Service) VerifyParticipant(ctx context.Context, participantID uint) error {
	if err := s.db.VerifyParticipant(ctx, participantID); err != nil {
		return err
	}
	s.log.Info("participant verified", slog.Uint64("participant_id", uint64(participantID)))
	return nil
}

func (s *Service) ListUsers(ctx context.Context) ([]userauth.User, error) {
	return s.db.ListUsers(ctx)
}

func (s *Service) ListUploads(ctx context.Context) ([]storage.File, error) {
	files, err := s.uploads.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	if files == nil {
		files = []storage.File{}
	}
	return files, nil
}
