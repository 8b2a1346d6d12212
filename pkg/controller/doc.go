// Package controller contains HTTP middlewares and helper handlers used by the API server.
//
// Provided middlewares:
//   - WithCORS: Adds CORS headers for the allowed methods and handles OPTIONS preflight.
//   - WithLogger: Attaches a request-scoped logger and request ID to the context,
//     echoes the ID in the response and logs access info.
//
// Provided helpers:
//   - PprofMux: Returns a ServeMux exposing net/http/pprof handlers under PprofPath.
package controller
