// Package controller contains HTTP middlewares and helper handlers used by the API server.
//
// Provided middlewares:
//   - WithCORS: lets browsers call the API and answers OPTIONS preflight requests.
//   - WithLogger: assigns a request ID and a request-scoped logger, then writes an access log.
//   - WithMetrics: records request latency by method and status code.
//
// Provided helpers:
//   - PprofMux: returns a ServeMux exposing net/http/pprof handlers.
package controller
