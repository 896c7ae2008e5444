package database

import (
	"context"
	"fmt"

	"github.com/xtesports/xtesports/internal/tournament"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (d *DB) GetTournament(ctx context.Context, id uint) (tournament.Tournament, error) {
	var res []tournament.Tournament
	err := d.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&res).Error
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("get tournament: %w", err)
	}
	if len(res) == 0 {
		return tournament.Tournament{}, tournament.ErrTournamentNotFound
	}
	return res[0], nil
}

// ListTournaments returns all tournaments, newest first.
func (d *DB) ListTournaments(ctx context.Context) ([]tournament.Tournament, error) {
	var res []tournament.Tournament
	err := d.db.WithContext(ctx).Order("id DESC").Find(&res).Error
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return res, nil
}

func (d *DB) CreateTournament(ctx context.Context, t *tournament.Tournament) error {
	if err := d.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create tournament: %w", err)
	}
	return nil
}

func (d *DB) CreateParticipant(ctx context.Context, p *tournament.Participant) error {
	if err := d.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		return fmt.Errorf("create participant: %w", err)
	}
	return nil
}

func findParticipant(tx *gorm.DB, id uint) (tournament.Participant, error) {
	var res []tournament.Participant
	err := tx.Where("id = ?", id).Limit(1).Find(&res).Error
	if err != nil {
		return tournament.Participant{}, fmt.Errorf("get participant: %w", err)
	}
	if len(res) == 0 {
		return tournament.Participant{}, tournament.ErrParticipantNotFound
	}
	return res[0], nil
}

func (d *DB) GetParticipant(ctx context.Context, id uint) (tournament.Participant, error) {
	return findParticipant(d.db.WithContext(ctx), id)
}

func (d *DB) ListParticipantsFull(ctx context.Context) ([]tournament.Participant, error) {
	var res []tournament.Participant
	err := d.db.WithContext(ctx).
		Preload("Tournament").
		Preload("Payments", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Order("created_at DESC, id DESC").
		Find(&res).Error
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return res, nil
}

func (d *DB) VerifyParticipant(ctx context.Context, participantID uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upd := tx.Model(&tournament.Participant{}).Where("id = ?", participantID).Update("paid", true)
		if upd.Error != nil {
			return fmt.Errorf("mark participant paid: %w", upd.Error)
		}
		if upd.RowsAffected == 0 {
			return tournament.ErrParticipantNotFound
		}
		err := tx.Model(&tournament.Payment{}).
			Where("participant_id = ?", participantID).
			Update("status", tournament.PaymentConfirmed).Error
		if err != nil {
			return fmt.Errorf("confirm payments: %w", err)
		}
		return nil
	})
}

func (d *DB) ListSettings(ctx context.Context) ([]tournament.Setting, error) {
	var res []tournament.Setting
	if err := d.db.WithContext(ctx).Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Find(&res).Error; err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return res, nil
}

func (d *DB) UpsertSettings(ctx context.Context, settings []tournament.Setting) error {
	if len(settings) == 0 {
		return nil
	}
	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&settings).Error
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}
