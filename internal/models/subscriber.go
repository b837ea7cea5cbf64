package models

import "time"

// Subscriber lifecycle states. The transition is monotonic: a confirmed
// subscriber never goes back to pending.
const (
	SubscriberStatusPending   = "pending_confirmation"
	SubscriberStatusConfirmed = "confirmed"
)

// SubscriberModel is one mailing-list member, keyed externally by email.
type SubscriberModel struct {
	Base
	Email        string    `json:"email"         gorm:"uniqueIndex;not null"`
	Name         string    `json:"name"          gorm:"not null"`
	Status       string    `json:"status"        gorm:"index;not null;default:'pending_confirmation'"`
	SubscribedAt time.Time `json:"subscribed_at" gorm:"not null"`
}

func (SubscriberModel) TableName() string { return "subscriptions" }

// SubscriptionTokenModel holds at most one live confirmation token per
// subscriber. Resubscription overwrites the token in place, which invalidates
// any previously mailed confirmation link.
type SubscriptionTokenModel struct {
	Base
	SubscriberID string `json:"-" gorm:"column:subscriber_id;uniqueIndex;not null"`
	Token        string `json:"-" gorm:"column:subscription_token;uniqueIndex;not null"`
}

func (SubscriptionTokenModel) TableName() string { return "subscription_tokens" }
