package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidPayload indicates the webhook body is not valid JSON.
var ErrInvalidPayload = errors.New("invalid JSON payload")

const (
	statusFiring = "firing"
	statusOK     = "ok"

	tagFiring   = "warning"
	tagResolved = "white_check_mark"
)

// Message is the ntfy JSON publish body. Title, Message and Click are copied
// verbatim from the alert payload; a nil value is encoded as JSON null.
type Message struct {
	Topic   string          `json:"topic"`
	Title   json.RawMessage `json:"title"`
	Message json.RawMessage `json:"message"`
	Tags    []string        `json:"tags"`
	Click   json.RawMessage `json:"click"`
}

// TagForStatus maps an alert status to an ntfy tag (emoji shortcode).
func TagForStatus(status string) string {
	switch status {
	case statusFiring:
		return tagFiring
	case statusOK:
		return tagResolved
	default:
		return ""
	}
}

// BuildMessage reshapes an alert webhook payload into an ntfy message.
// Missing fields degrade to null; a JSON document that is not an object is
// treated as having no fields. Only malformed JSON is an error.
func BuildMessage(topic string, payload []byte) (Message, error) {
	if !json.Valid(payload) {
		return Message{}, ErrInvalidPayload
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		fields = nil
	}

	var status string
	if raw, ok := fields["status"]; ok {
		if err := json.Unmarshal(raw, &status); err != nil {
			status = ""
		}
	}

	return Message{
		Topic:   topic,
		Title:   fields["title"],
		Message: fields["message"],
		Tags:    []string{TagForStatus(status)},
		Click:   fields["externalURL"],
	}, nil
}

// Encode serializes the message without HTML escaping and without a trailing newline.
func (m Message) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
