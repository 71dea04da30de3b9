package notify

// Config holds configuration for the Pub/Sub notification topic.
type Config struct {
	// Enabled publishes notifications to Pub/Sub; otherwise they are only logged.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// ProjectID is the Google Cloud project owning the topic.
	ProjectID string `mapstructure:"project_id" default:""`
	// Topic receives path-change and reindex notifications.
	Topic string `mapstructure:"topic" default:"catalog-url-events"`
	// CredentialsFile is an optional service account key; ADC is used when empty.
	CredentialsFile string `mapstructure:"credentials_file" default:""`
}
