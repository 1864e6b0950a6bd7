// Package config provides configuration management for the scene sync service.
//
// It loads an optional .env file with godotenv and then reads every setting
// from environment variables through Viper. Defaults live in the `default`
// struct tags of each section and are registered by reflection, so adding a
// field to a section config is enough to make it configurable.
//
// # Configuration Structure
//
// The Config struct is divided into subsections, each owned by its package:
//   - Server: HTTP port and API key
//   - Storage: S3/MinIO credentials, bucket and presign lifetime
//   - Log: logging level and format
//   - Database: driver (mysql, sqlite) and connection details
//   - Scene: scene document table
//   - Assets: object prefix, batch concurrency and download timeout
//
// Environment keys are the upper-cased section and field joined by an
// underscore, e.g. STORAGE_BUCKET or ASSETS_CONCURRENCY.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
