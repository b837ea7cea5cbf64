package subscription

import (
	"testing"

	"github.com/Till769/zero2prod/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.SubscriberModel{},
		&models.SubscriptionTokenModel{},
		&models.OptionModel{},
		&models.UserModel{},
		&models.UserSession{},
		&models.APIToken{},
	))
	return db
}

func storedToken(t *testing.T, db *gorm.DB, subscriberID string) string {
	t.Helper()
	var row models.SubscriptionTokenModel
	require.NoError(t, db.Where("subscriber_id = ?", subscriberID).First(&row).Error)
	return row.Token
}

func TestSubscribeCreatesPendingSubscriber(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	sub, token, err := svc.Subscribe("le guin", "ursula_le_guin@gmail.com")
	require.NoError(t, err)
	require.NotNil(t, sub)

	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, models.SubscriberStatusPending, sub.Status)
	assert.Len(t, token, tokenLength)
	assert.True(t, isWellFormedToken(token))

	var stored models.SubscriberModel
	require.NoError(t, db.Where("email = ?", "ursula_le_guin@gmail.com").First(&stored).Error)
	assert.Equal(t, "le guin", stored.Name)
	assert.Equal(t, models.SubscriberStatusPending, stored.Status)
	assert.False(t, stored.SubscribedAt.IsZero())

	assert.Equal(t, token, storedToken(t, db, sub.ID))
}

func TestSubscribeTwiceKeepsOneRowAndRotatesToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	first, firstToken, err := svc.Subscribe("le guin", "ursula@example.com")
	require.NoError(t, err)

	second, secondToken, err := svc.Subscribe("someone else", "ursula@example.com")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "re-subscribing must reuse the existing subscriber")
	assert.NotEqual(t, firstToken, secondToken, "token must rotate on re-subscribe")

	var subCount int64
	require.NoError(t, db.Model(&models.SubscriberModel{}).Count(&subCount).Error)
	assert.EqualValues(t, 1, subCount)

	var tokenCount int64
	require.NoError(t, db.Model(&models.SubscriptionTokenModel{}).Count(&tokenCount).Error)
	assert.EqualValues(t, 1, tokenCount)

	var stored models.SubscriberModel
	require.NoError(t, db.Where("email = ?", "ursula@example.com").First(&stored).Error)
	assert.Equal(t, "le guin", stored.Name, "existing row must stay untouched")

	assert.Equal(t, secondToken, storedToken(t, db, first.ID))
}

func TestSubscribeAgainAfterConfirmKeepsConfirmedStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	sub, token, err := svc.Subscribe("le guin", "ursula@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(token))

	_, newToken, err := svc.Subscribe("le guin", "ursula@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, token, newToken)

	var stored models.SubscriberModel
	require.NoError(t, db.First(&stored, "id = ?", sub.ID).Error)
	assert.Equal(t, models.SubscriberStatusConfirmed, stored.Status)
}

func TestConfirmMarksSubscriberConfirmed(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	sub, token, err := svc.Subscribe("le guin", "ursula@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Confirm(token))

	var stored models.SubscriberModel
	require.NoError(t, db.First(&stored, "id = ?", sub.ID).Error)
	assert.Equal(t, models.SubscriberStatusConfirmed, stored.Status)
}

func TestConfirmIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	_, token, err := svc.Subscribe("le guin", "ursula@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Confirm(token))
	require.NoError(t, svc.Confirm(token))
}

func TestConfirmUnknownToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	err := svc.Confirm("aaaaaaaaaaaaaaaaaaaaaaaaa")
	assert.ErrorIs(t, err, errUnknownToken)
}

func TestConfirmStaleTokenAfterRotation(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	_, staleToken, err := svc.Subscribe("le guin", "ursula@example.com")
	require.NoError(t, err)

	_, freshToken, err := svc.Subscribe("le guin", "ursula@example.com")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Confirm(staleToken), errUnknownToken)
	require.NoError(t, svc.Confirm(freshToken))
}
