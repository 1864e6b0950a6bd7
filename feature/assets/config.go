package assets

// Config holds configuration for asset synchronization.
type Config struct {
	// Prefix is the object key prefix used when a request names none.
	Prefix string `mapstructure:"prefix" default:"files"`
	// Concurrency bounds parallel uploads and downloads per batch. 0 is unbounded.
	Concurrency int `mapstructure:"concurrency" default:"8"`
	// DownloadTimeoutSeconds bounds a single asset download.
	DownloadTimeoutSeconds int `mapstructure:"download_timeout_seconds" default:"30"`
}
