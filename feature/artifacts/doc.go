// Package artifacts downloads firmware images and scripts from the remote
// artifact store into the local cache.
//
// The Service implements monitor.Fetcher and is published as that capability
// when storage is enabled. Downloads are written to a temporary file and
// renamed into place, so a cached path always holds a complete object.
//
// # HTTP Endpoints
//
//   - GET /api/artifacts : Lists objects (supports ?prefix=).
//   - GET /api/artifacts/check : Verifies the bucket exists.
//   - POST /api/artifacts/fetch : Downloads an object into the cache.
package artifacts
