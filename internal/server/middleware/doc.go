// Package middleware provides HTTP middleware for the network transports:
// security headers, request size limits, and per-request metrics.
package middleware
