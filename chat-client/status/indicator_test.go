package status

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gosuda/chatroom/chat-client/session"
)

type sinkRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (s *sinkRecorder) record(c string) {
	s.mu.Lock()
	s.calls = append(s.calls, c)
	s.mu.Unlock()
}

func (s *sinkRecorder) ShowBadge(b Badge) { s.record("show " + b.Label) }
func (s *sinkRecorder) FadeBadge()        { s.record("fade") }
func (s *sinkRecorder) HideBadge()        { s.record("hide") }

func (s *sinkRecorder) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func TestBadgeFor(t *testing.T) {
	assert.Equal(t, Badge{Label: "● connected", Connected: true}, BadgeFor(session.Connected))
	for _, s := range []session.State{session.Disconnected, session.Connecting, session.Closing} {
		assert.False(t, BadgeFor(s).Connected, s.String())
	}
}

func TestFlashDismissesAfterTTL(t *testing.T) {
	sink := &sinkRecorder{}
	ind := NewIndicator(sink, 20*time.Millisecond)

	ind.Flash(session.Connected)

	assert.Eventually(t, func() bool { return len(sink.snapshot()) == 3 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"show ● connected", "fade", "hide"}, sink.snapshot())
}

func TestNewerFlashCancelsDismissal(t *testing.T) {
	sink := &sinkRecorder{}
	ind := NewIndicator(sink, 150*time.Millisecond)

	ind.Flash(session.Disconnected)
	ind.Flash(session.Connected)

	assert.Eventually(t, func() bool { return len(sink.snapshot()) == 4 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"show ● disconnected", "show ● connected", "fade", "hide"}, sink.snapshot())
}

func TestStop(t *testing.T) {
	sink := &sinkRecorder{}
	ind := NewIndicator(sink, 100*time.Millisecond)

	ind.Flash(session.Connected)
	ind.Stop()

	time.Sleep(100*time.Millisecond + FadeDuration + 50*time.Millisecond)
	assert.Equal(t, []string{"show ● connected"}, sink.snapshot())
}
