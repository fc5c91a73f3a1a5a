package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout matches what browsers produce with Date.toISOString.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

var (
	ErrEmptyContent = errors.New("message content cannot be empty")
	ErrNotObject    = errors.New("frame is not a json object")
)

// Message is a single chat frame exchanged over /ws.
type Message struct {
	Username  string
	Content   string
	Timestamp time.Time
	Kind      Kind
}

type wireMessage struct {
	Username  string `json:"username"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Type      Kind   `json:"type"`
}

// NewMessage builds an outgoing chat message. Content is trimmed first.
func NewMessage(username, content string, now time.Time) (Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Message{}, ErrEmptyContent
	}
	return Message{
		Username:  username,
		Content:   content,
		Timestamp: now.UTC(),
		Kind:      KindMessage,
	}, nil
}

// Encode serializes m into a text frame payload.
func Encode(m Message) ([]byte, error) {
	w := wireMessage{
		Username: m.Username,
		Content:  m.Content,
		Type:     m.Kind,
	}
	if !m.Timestamp.IsZero() {
		w.Timestamp = m.Timestamp.UTC().Format(TimestampLayout)
	}
	b, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return b, nil
}

// Decode parses an inbound frame. A timestamp that cannot be parsed leaves
// Timestamp zero instead of rejecting the whole frame.
func Decode(data []byte) (Message, error) {
	var w *wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	if w == nil {
		return Message{}, ErrNotObject
	}
	m := Message{
		Username: w.Username,
		Content:  w.Content,
		Kind:     w.Type,
	}
	if w.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339Nano, w.Timestamp); err == nil {
			m.Timestamp = ts
		}
	}
	return m, nil
}
