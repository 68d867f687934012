// Package http provides the HTTP transport layer: chi handlers for the
// reporting API, the health endpoint, and the router wiring middleware
// around them.
package http
