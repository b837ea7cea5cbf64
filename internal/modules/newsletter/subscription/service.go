package subscription

import (
	"errors"
	"time"

	"github.com/Till769/zero2prod/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errUnknownToken = errors.New("subscription token not found")

// storeTokenError marks a failure while persisting the confirmation token,
// as opposed to a failure inserting the subscriber itself.
type storeTokenError struct{ cause error }

func (e *storeTokenError) Error() string {
	return "failed to store subscription token: " + e.cause.Error()
}

func (e *storeTokenError) Unwrap() error { return e.cause }

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Subscribe persists a pending subscriber and a fresh confirmation token in
// one transaction. Re-subscribing with a known email keeps the existing row
// (id, status and subscribed_at untouched) and rotates the token, so only
// the most recently mailed link stays valid.
func (s *Service) Subscribe(name, email string) (*models.SubscriberModel, string, error) {
	token, err := newSubscriptionToken()
	if err != nil {
		return nil, "", err
	}

	sub := models.SubscriberModel{
		Name:         name,
		Email:        email,
		Status:       models.SubscriberStatusPending,
		SubscribedAt: time.Now(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).Create(&sub)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var existing models.SubscriberModel
			if err := tx.Where("email = ?", email).First(&existing).Error; err != nil {
				return err
			}
			sub = existing
		}

		row := models.SubscriptionTokenModel{
			SubscriberID: sub.ID,
			Token:        token,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subscriber_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"subscription_token"}),
		}).Create(&row).Error; err != nil {
			return &storeTokenError{cause: err}
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	return &sub, token, nil
}

// Confirm flips the subscriber behind the token to confirmed. Confirming an
// already confirmed subscriber is a no-op success.
func (s *Service) Confirm(token string) error {
	var row models.SubscriptionTokenModel
	err := s.db.Where("subscription_token = ?", token).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errUnknownToken
	}
	if err != nil {
		return err
	}

	return s.db.Model(&models.SubscriberModel{}).
		Where("id = ?", row.SubscriberID).
		Update("status", models.SubscriberStatusConfirmed).Error
}
