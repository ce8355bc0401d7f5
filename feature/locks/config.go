package locks

// Config holds lock registry provisioning settings.
type Config struct {
	// File is the YAML registry imported by `locks import` when no path is given.
	File string `mapstructure:"file" default:"locks.yaml"`
}
