// Package server exposes the pipeline over HTTP.
//
// # Routes
//
//	GET  /api/filters        list filters: [{id, name, description, source}]
//	GET  /api/filters/{id}   one filter and its stage chain
//	POST /api/transform      {"filter": "pirate", "text": "..."} -> {"result": "..."}
//	GET  /healthz            liveness
//	GET  /metrics            Prometheus metrics, when enabled
//
// Errors are JSON objects {"error": message, "code": CODE}. A missing
// filter or text is 400, an unknown filter 404, a filter whose definition
// does not assemble 422, anything else 500.
//
// Every request carries an X-Request-ID, taken from the request when it
// is a valid UUID and generated otherwise.
package server
