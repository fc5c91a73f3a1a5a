package client

import (
	"sync"

	"github.com/gosuda/chatroom/chat-client/render"
)

// Snapshot is a copy of the client state for readers outside the run loop.
type Snapshot struct {
	ServerURL     string         `json:"server_url"`
	Username      string         `json:"username"`
	State         string         `json:"state"`
	OnlineUsers   int            `json:"online_users"`
	TotalMessages int            `json:"total_messages"`
	Recent        []render.Entry `json:"recent"`
}

type snapshotStore struct {
	mu    sync.RWMutex
	limit int
	snap  Snapshot
}

func (s *snapshotStore) update(fn func(*Snapshot)) {
	s.mu.Lock()
	fn(&s.snap)
	s.mu.Unlock()
}

func (s *snapshotStore) record(e render.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.limit <= 0 {
		return
	}
	s.snap.Recent = append(s.snap.Recent, e)
	if over := len(s.snap.Recent) - s.limit; over > 0 {
		s.snap.Recent = append(s.snap.Recent[:0:0], s.snap.Recent[over:]...)
	}
}

func (s *snapshotStore) get() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.snap
	out.Recent = append([]render.Entry(nil), s.snap.Recent...)
	return out
}
