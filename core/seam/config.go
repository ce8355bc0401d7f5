package seam

// Config holds configuration for the lock provider API.
type Config struct {
	// BaseURL is the root of the provider API.
	BaseURL string `mapstructure:"base_url" default:"https://connect.getseam.com"`
	// TimeoutSeconds bounds every individual API call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
