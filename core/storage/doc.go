// Package storage archives reconciliation reports in S3 compatible object
// storage.
//
// It wraps the MinIO Go client behind a small Client interface so commands
// can be tested with the mocks in core/storage/mocks. Both AWS S3 and
// self-hosted MinIO are supported.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	info, err := storage.Archive(ctx, client, cfg.Storage, report.ObjectName(), data, "application/json")
package storage
