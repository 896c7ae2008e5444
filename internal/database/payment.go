package database

import (
	"context"
	"fmt"

	"github.com/xtesports/xtesports/internal/tournament"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (d *DB) SetCheckoutSession(ctx context.Context, participantID uint, sessionID string) error {
	upd := d.db.WithContext(ctx).
		Model(&tournament.Participant{}).
		Where("id = ?", participantID).
		Update("stripe_session_id", sessionID)
	if upd.Error != nil {
		return fmt.Errorf("set checkout session: %w", upd.Error)
	}
	if upd.RowsAffected == 0 {
		return tournament.ErrParticipantNotFound
	}
	return nil
}

func (d *DB) RecordHostedPayment(ctx context.Context, p *tournament.Payment) (bool, error) {
	created := false
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if p.ProviderRef != nil {
			var existing []tournament.Payment
			err := tx.Where("stripe_id = ?", *p.ProviderRef).Limit(1).Find(&existing).Error
			if err != nil {
				return fmt.Errorf("find payment: %w", err)
			}
			if len(existing) != 0 {
				*p = existing[0]
				return nil
			}
		}
		if _, err := findParticipant(tx, p.ParticipantID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		err := tx.Model(&tournament.Participant{}).
			Where("id = ?", p.ParticipantID).
			Update("paid", true).Error
		if err != nil {
			return fmt.Errorf("mark participant paid: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (d *DB) RecordManualPayment(ctx context.Context, p *tournament.Payment, upload *tournament.Upload) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		if upload == nil {
			return nil
		}
		upload.PaymentID = &p.ID
		if upload.ParticipantID == nil {
			upload.ParticipantID = &p.ParticipantID
		}
		if err := tx.Create(upload).Error; err != nil {
			return fmt.Errorf("create upload: %w", err)
		}
		return nil
	})
}

// ListPayments returns the payments of a participant in creation order.
func (d *DB) ListPayments(ctx context.Context, participantID uint) ([]tournament.Payment, error) {
	var res []tournament.Payment
	err := d.db.WithContext(ctx).Where("participant_id = ?", participantID).Order("id ASC").Find(&res).Error
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return res, nil
}

func (d *DB) ListUploadRecords(ctx context.Context) ([]tournament.Upload, error) {
	var res []tournament.Upload
	if err := d.db.WithContext(ctx).Order("id ASC").Find(&res).Error; err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	return res, nil
}
