package sync

// Config holds the periodic reconciliation schedule.
type Config struct {
	// Spec is a cron expression or descriptor such as "@every 15m".
	Spec string `mapstructure:"spec" default:"@every 15m"`
	// Enabled turns the periodic run on for the start command.
	Enabled bool `mapstructure:"enabled" default:"true"`
}
