package database

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/satouyama/pesto-sub001/models"
	"github.com/satouyama/pesto-sub001/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	utils.SilenceLoggers()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestSeedSettingsOnce(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, SeedSettings(db, SeedDefaults{DeliveryCharge: decimal.NewFromInt(5), GuestCheckoutAllowed: true}))
	require.NoError(t, SeedSettings(db, SeedDefaults{DeliveryCharge: decimal.NewFromInt(9)}))

	var settings []models.Setting
	require.NoError(t, db.Find(&settings).Error)
	require.Len(t, settings, 1)
	assert.True(t, settings[0].DeliveryCharge.Equal(decimal.NewFromInt(5)))
	assert.True(t, settings[0].GuestCheckoutAllowed)
	assert.Equal(t, "USD", settings[0].Currency)
}
