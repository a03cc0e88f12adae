// Package robot is the test-automation control server. It listens on its own
// port, independent of the server-mode listener, and exposes a small keyword
// library in the style of a Robot Framework remote library.
//
// # HTTP Endpoints
//
//   - GET /keywords : Lists keyword names.
//   - POST /keywords/:name : Runs a keyword with {"args": [...]}.
//
// A keyword that fails still answers 200 with status FAIL; transport errors
// and unknown keywords use HTTP status codes.
package robot
