// Package storage wraps the MinIO Go client for the remote artifact store.
//
// Renode can fetch firmware images and scripts from an S3-compatible bucket.
// The Client interface exposes only what the artifact fetcher needs, making it
// easy to mock in tests (see core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	exists, err := client.BucketExists(ctx, cfg.Storage.Bucket)
package storage
