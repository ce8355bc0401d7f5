package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	t.Run("Invalid Connection", func(t *testing.T) {
		cfg := Config{
			Driver:         DriverMySQL,
			Host:           "localhost",
			Port:           9999, // Unused port
			User:           "root",
			Password:       "wrongpassword",
			Name:           "hotel",
			TimeoutSeconds: 1,
		}

		db, err := Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("Unsupported Driver", func(t *testing.T) {
		db, err := Connect(Config{Driver: "oracle"})
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("SQLite In Memory", func(t *testing.T) {
		db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
		require.NoError(t, err)
		assert.Equal(t, "sqlite", db.Dialector.Name())
	})
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{Driver: DriverSQLite}.Validate())
	assert.NoError(t, Config{Driver: DriverMySQL}.Validate())
	assert.Error(t, Config{Driver: "postgres"}.Validate())
}

type widget struct {
	ID    uint   `gorm:"primaryKey"`
	Label string `gorm:"column:label"`
}

type widgetV2 struct {
	ID    uint   `gorm:"primaryKey"`
	Label string `gorm:"column:label"`
	Color string `gorm:"column:color"`
}

func (widgetV2) TableName() string { return "widgets" }

func TestMigrate(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	require.NoError(t, Migrate(db, &widget{}))
	assert.NoError(t, VerifySchema(db, &widget{}))

	// widgetV2 maps to the same table but declares a column that was never migrated.
	err = VerifySchema(db, &widgetV2{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "color")
}
