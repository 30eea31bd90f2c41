// Package storage provides an abstraction layer for the snapshot object store.
//
// It wraps the MinIO Go client so GTFS archives can be pulled from an S3 or
// MinIO bucket instead of the local filesystem, and so successfully imported
// archives can be copied under an archive prefix.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it
// easy to mock storage interactions in unit tests (see core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	n, err := storage.Download(ctx, client, cfg.Storage.Bucket, "incoming/gtfs.zip", file)
package storage
