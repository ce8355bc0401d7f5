// Package config provides configuration management for the access-code sync service.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults live next to each setting as `default` struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: local record store (SQLite or MySQL)
//   - Storage: S3/MinIO snapshot archive
//   - Cloudbeds: reservation source credentials and sync window
//   - Seam: lock provider endpoint
//   - Property: time zone, check-in/out clock times, active statuses, PIN length
//   - RoomBlock: which block notifications produce codes
//   - Schedule: periodic reconciliation
//   - Locks: registry provisioning file
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Property.Timezone)
package config
