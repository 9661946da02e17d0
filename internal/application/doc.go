// Package application provides application initialization and dependency wiring.
// It connects the ntfy client, the webhook handler, the router and the HTTP
// server, keeping the main package focused on CLI parsing and orchestration.
package application
