// Package storage wraps the MinIO/S3 client used to archive run reports.
//
// When storage is enabled, every regeneration run can upload its JSON report
// (counts and per-entity failures) to a bucket so that operators keep a history
// of collisions across runs.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	key, err := storage.PutReport(ctx, client, cfg.Storage.Bucket, cfg.Storage.ReportPrefix, name, data)
package storage
