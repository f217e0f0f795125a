// Package server is the HTTP adapter of the word counter. It exposes the
// count and result routes on top of service.Service together with health,
// readiness and Prometheus endpoints, and carries the middleware chain:
// request ids, request logging, security headers, per-IP rate limiting
// and gzip compression.
package server
