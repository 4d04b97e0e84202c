// Package app provides application initialization and lifecycle
// management for the sales analytics service. It wires configuration,
// logging, metrics, the dataset store, and the HTTP router together at
// startup and handles graceful shutdown.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Load configuration from environment and files
//	2. Initialize logging and metrics
//	3. Create the file discovery and dataset store
//	4. Set up HTTP handlers and middleware
//	5. Start the server and the initial background load
//
// # Graceful Shutdown
//
// The package handles SIGINT and SIGTERM to ensure active requests are
// completed and log files are flushed before exit.
package app
