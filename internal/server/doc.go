// Package server exposes the downstream HTTP surface: the SSE delta streams,
// health endpoints and prometheus metrics.
package server
