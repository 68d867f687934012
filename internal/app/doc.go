// Package app is the composition root for the insights server. It
// loads configuration, initializes logging, wires the store, loader,
// forecast engine, insight generator and report service together, and
// runs the HTTP server with graceful shutdown.
package app
