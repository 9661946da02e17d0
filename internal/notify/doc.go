// Package notify builds ntfy publish messages from alert webhook payloads and
// forwards them to the configured ntfy endpoint.
package notify
