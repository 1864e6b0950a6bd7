package scene

// Config holds configuration for scene persistence.
type Config struct {
	// Table is the database table holding scene documents.
	Table string `mapstructure:"table" default:"scenes"`
}
