package config

import (
	"fmt"
	"reflect"
	"strings"

	"access-sync/core/cloudbeds"
	"access-sync/core/database"
	"access-sync/core/logger"
	"access-sync/core/property"
	"access-sync/core/seam"
	"access-sync/core/server"
	"access-sync/core/storage"
	"access-sync/feature/locks"
	"access-sync/feature/roomblocks"
	"access-sync/feature/sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the snapshot archive (S3, MinIO).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the local record store.
	Database database.Config `mapstructure:"database"`
	// Cloudbeds holds configuration for the reservation source.
	Cloudbeds cloudbeds.Config `mapstructure:"cloudbeds"`
	// Seam holds configuration for the lock provider.
	Seam seam.Config `mapstructure:"seam"`
	// Property holds the property's time zone and access-code rules.
	Property property.Config `mapstructure:"property"`
	// RoomBlock holds the filter and clock times for room-block codes.
	RoomBlock roomblocks.Config `mapstructure:"room_block"`
	// Schedule holds the periodic reconciliation schedule.
	Schedule sync.Config `mapstructure:"schedule"`
	// Locks holds the lock registry provisioning settings.
	Locks locks.Config `mapstructure:"locks"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SEAM_BASE_URL -> seam.base_url)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks settings that cannot be expressed as defaults.
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Property.Validate(); err != nil {
		return fmt.Errorf("property: %w", err)
	}
	if err := c.RoomBlock.Validate(); err != nil {
		return fmt.Errorf("room_block: %w", err)
	}
	return nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
