// Package middleware contains HTTP middleware for the network control servers.
//
// # Components
//
//   - Auth: API key validation for the API server. Disabled when no key is configured.
//   - RayID: a unique request ID per request, stored in the Fiber locals and
//     echoed in the response headers for tracing.
//   - ReqLog: logs each request through zap with its ray ID.
package middleware
