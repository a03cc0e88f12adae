// Package api is the server-mode control server: a Fiber application served
// on the listener bound during startup.
//
// # HTTP Endpoints
//
//   - GET /api/status : Engine state and build identification.
//   - POST /api/command : Runs one monitor command.
//   - POST /api/quit : Requests shutdown.
//   - GET /ws : Websocket monitor; each text frame is one command.
//   - GET /swagger/* : API documentation (public).
//
// Every request gets a ray ID and is logged. When an API key is configured,
// every route except the documentation requires it.
package api
