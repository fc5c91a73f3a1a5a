package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 30, 0, 0, time.FixedZone("KST", 9*3600))

	m, err := NewMessage("Alice", "  hello  ", now)
	require.NoError(t, err)
	assert.Equal(t, "Alice", m.Username)
	assert.Equal(t, "hello", m.Content)
	assert.Equal(t, KindMessage, m.Kind)
	assert.Equal(t, time.UTC, m.Timestamp.Location())
	assert.True(t, m.Timestamp.Equal(now))

	_, err = NewMessage("Alice", " \t\n", now)
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestEncodeOutgoingFrame(t *testing.T) {
	ts := time.Date(2024, 5, 1, 3, 4, 5, 678_000_000, time.UTC)
	m, err := NewMessage("Alice", "hello", ts)
	require.NoError(t, err)

	b, err := Encode(m)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, map[string]any{
		"username":  "Alice",
		"content":   "hello",
		"timestamp": "2024-05-01T03:04:05.678Z",
		"type":      "message",
	}, got)
}

func TestDecode(t *testing.T) {
	m, err := Decode([]byte(`{"username":"Bob","content":"hi","timestamp":"2024-05-01T03:04:05.678Z","type":"message"}`))
	require.NoError(t, err)
	assert.Equal(t, "Bob", m.Username)
	assert.Equal(t, "hi", m.Content)
	assert.Equal(t, KindMessage, m.Kind)
	assert.Equal(t, 678_000_000, m.Timestamp.Nanosecond())

	// Go servers marshal time.Time with nanoseconds and a zone offset.
	m, err = Decode([]byte(`{"id":"1","username":"System","content":"Bob joined","timestamp":"2024-05-01T12:04:05.123456789+09:00","type":"join"}`))
	require.NoError(t, err)
	assert.Equal(t, KindJoin, m.Kind)
	assert.Equal(t, 3, m.Timestamp.UTC().Hour())
}

func TestDecodeLenientFields(t *testing.T) {
	m, err := Decode([]byte(`{"username":"Bob","content":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, KindMessage, m.Kind)
	assert.True(t, m.Timestamp.IsZero())

	m, err = Decode([]byte(`{"username":"Bob","content":"hi","type":"poke","timestamp":"yesterday"}`))
	require.NoError(t, err)
	assert.Equal(t, KindMessage, m.Kind)
	assert.True(t, m.Timestamp.IsZero())
}

func TestDecodeRejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		``,
		`not json`,
		`{"username":`,
		`[1,2]`,
		`"text"`,
		`{"username":"Bob","type":3}`,
	} {
		_, err := Decode([]byte(raw))
		assert.Error(t, err, "input %q", raw)
	}

	_, err := Decode([]byte(`null`))
	assert.ErrorIs(t, err, ErrNotObject)
}

func TestKind(t *testing.T) {
	assert.True(t, KindJoin.IsSystem())
	assert.True(t, KindLeave.IsSystem())
	assert.True(t, KindSystem.IsSystem())
	assert.False(t, KindMessage.IsSystem())

	assert.Equal(t, "leave", KindLeave.String())
	assert.Equal(t, "unknown", Kind(42).String())
	assert.Equal(t, KindSystem, ParseKind("system"))
	assert.Equal(t, KindMessage, ParseKind(""))
}
