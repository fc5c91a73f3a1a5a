package client

import (
	"github.com/gosuda/chatroom/chat-client/stats"
	"github.com/gosuda/chatroom/chat-client/transport"
)

// event is anything the run loop reacts to. Connection events carry the dial
// sequence number they belong to so that late events from an abandoned
// connection can be recognised and dropped.
type event interface {
	isEvent()
}

type joinRequested struct{ username string }

type sendRequested struct{ text string }

type leaveRequested struct{}

type dialed struct {
	seq  uint64
	conn transport.Conn
	err  error
}

type frameReceived struct {
	seq  uint64
	data []byte
}

type connClosed struct {
	seq uint64
	err error
}

type statsFetched struct {
	stats stats.Stats
	err   error
}

func (joinRequested) isEvent()  {}
func (sendRequested) isEvent()  {}
func (leaveRequested) isEvent() {}
func (dialed) isEvent()         {}
func (frameReceived) isEvent()  {}
func (connClosed) isEvent()     {}
func (statsFetched) isEvent()   {}
