// Package storage archives raw reservation snapshots to object storage.
//
// It wraps the MinIO Go client behind the narrow Client interface (bucket
// check, bucket creation, upload), which works against AWS S3 and self-hosted
// MinIO alike and is mocked in core/storage/mocks.
//
// Archive writes one JSON document per object and creates its bucket on
// first use.
//
//	client, err := storage.NewClient(cfg)
//	archive := storage.NewArchive(client, cfg.Bucket, cfg.Region)
//	err = archive.PutJSON(ctx, "2026/03/10/153000.json", snapshot)
package storage
