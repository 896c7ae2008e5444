package tournament

import (
	"context"
	"errors"
)

var (
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrParticipantNotFound = errors.New("participant not found")
)

type DB interface {
	GetTournament(ctx context.Context, id uint) (Tournament, error)
	ListTournaments(ctx context.Context) ([]Tournament, error)
	CreateParticipant(ctx context.Context, p *Participant) error
	GetParticipant(ctx context.Context, id uint) (Participant, error)
	ListSettings(ctx context.Context) ([]Setting, error)
}
