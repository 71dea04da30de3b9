// Package config provides configuration management for the rewrite manager.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults live next to each field as struct tags and are
// registered through reflection, so every key is also reachable through AutomaticEnv.
//
// # Configuration Structure
//
//   - Catalog: URL suffixes and category-path generation for products
//   - Database: MySQL (or SQLite) connection of the catalog database
//   - Log: Logging level and format
//   - Storage: S3/MinIO bucket used to archive JSON run reports
//   - Redis: cache flush pattern and optional scope lock
//   - Notify: Pub/Sub topic for path-change and reindex notifications
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Catalog.CategoryURLSuffix)
package config
