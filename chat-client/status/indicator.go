// Package status drives the transient connection badge.
package status

import (
	"sync"
	"time"

	"github.com/gosuda/chatroom/chat-client/session"
)

// FadeDuration is how long a badge stays faded before it is removed.
const FadeDuration = 300 * time.Millisecond

type Badge struct {
	Label     string
	Connected bool
}

// BadgeFor only distinguishes connected from everything else.
func BadgeFor(s session.State) Badge {
	if s == session.Connected {
		return Badge{Label: "● connected", Connected: true}
	}
	return Badge{Label: "● disconnected"}
}

// Sink draws the badge. Calls are serialized by the Indicator.
type Sink interface {
	ShowBadge(Badge)
	FadeBadge()
	HideBadge()
}

// Indicator shows a badge and dismisses it after a TTL. A newer Flash cancels the
// pending dismissal of the previous badge.
type Indicator struct {
	sink Sink
	ttl  time.Duration

	mu    sync.Mutex
	gen   uint64
	timer *time.Timer
}

func NewIndicator(sink Sink, ttl time.Duration) *Indicator {
	return &Indicator{sink: sink, ttl: ttl}
}

func (i *Indicator) Flash(state session.State) {
	i.mu.Lock()
	defer i.mu.Unlock()
	gen := i.reset()
	i.sink.ShowBadge(BadgeFor(state))
	i.timer = time.AfterFunc(i.ttl, func() { i.fade(gen) })
}

// Stop cancels any pending dismissal. The badge currently shown stays.
func (i *Indicator) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.reset()
}

func (i *Indicator) reset() uint64 {
	i.gen++
	if i.timer != nil {
		i.timer.Stop()
		i.timer = nil
	}
	return i.gen
}

func (i *Indicator) fade(gen uint64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if gen != i.gen {
		return
	}
	i.sink.FadeBadge()
	i.timer = time.AfterFunc(FadeDuration, func() { i.hide(gen) })
}

func (i *Indicator) hide(gen uint64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if gen != i.gen {
		return
	}
	i.timer = nil
	i.sink.HideBadge()
}
