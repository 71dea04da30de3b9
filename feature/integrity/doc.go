// Package integrity provides preflight checks for the regeneration jobs.
//
// The schema check reflects over the gorm models of the catalog and url_rewrite
// tables and compares their tagged columns and types with what the database
// reports (SHOW COLUMNS on MySQL, PRAGMA table_info on SQLite).
//
// # Usage
//
//	svc := integrity.NewService(db, logger)
//	report, err := svc.CheckSchema(ctx)
//	if err == nil && !report.Matched {
//		// refuse to run
//	}
package integrity
