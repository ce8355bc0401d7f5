package cloudbeds

// Config holds configuration for the reservation source.
type Config struct {
	// BaseURL is the API root, without a trailing slash.
	BaseURL string `mapstructure:"base_url" default:"https://api.cloudbeds.com/api/v1.2"`
	// APIKey authenticates every request.
	APIKey string `mapstructure:"api_key" default:""`
	// PropertyID scopes every request to one property.
	PropertyID string `mapstructure:"property_id" default:""`
	// RoomTypeID restricts the snapshot to one room type. Empty means all.
	RoomTypeID string `mapstructure:"room_type_id" default:""`
	// DaysBack is how many days before today the check-in window opens.
	DaysBack int `mapstructure:"days_back" default:"7"`
	// DaysAhead is how many days after today the check-in window closes.
	DaysAhead int `mapstructure:"days_ahead" default:"7"`
	// PageSize is the listing page size.
	PageSize int `mapstructure:"page_size" default:"100"`
	// DetailBatchSize is how many reservation ids are fetched per detail request.
	DetailBatchSize int `mapstructure:"detail_batch_size" default:"50"`
	// TimeoutSeconds bounds each request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
