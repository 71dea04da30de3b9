// Package database handles database connections and schema inspection.
//
// It wraps GORM to configure MySQL connections for the catalog database, with an
// SQLite driver available for local runs and tests. Connections translate driver
// duplicate-key errors into gorm.ErrDuplicatedKey.
//
// # Schema Inspection
//
// GetTableColumns backs the `check schema` preflight, which compares the catalog
// and url_rewrite tables with their models. MissingColumns is the quick variant
// every regeneration run calls before touching url_rewrite.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "url_rewrite", []string{"request_path"})
package database
