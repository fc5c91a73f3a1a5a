// Package client holds the chat session and the loop that reacts to transport,
// timer and user events.
package client

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/chatroom/chat-client/protocol"
	"github.com/gosuda/chatroom/chat-client/render"
	"github.com/gosuda/chatroom/chat-client/session"
	"github.com/gosuda/chatroom/chat-client/stats"
	"github.com/gosuda/chatroom/chat-client/status"
	"github.com/gosuda/chatroom/chat-client/transport"
)

const (
	noticeNickname   = "Please enter a nickname."
	noticeConnection = "Connection failed, please retry."
)

// View is the presentation surface driven by the client. Methods are called from
// the run loop only.
type View interface {
	status.Sink
	ShowLogin()
	// ShowChat switches to the chat view and focuses the message input.
	ShowChat()
	// AppendEntry adds a line to the message list and scrolls to it.
	AppendEntry(render.Entry)
	// ClearMessageInput empties the message input if it still holds sent.
	ClearMessageInput(sent string)
	SetStats(stats.Stats)
	Alert(msg string)
}

type StatsFetcher interface {
	Fetch(ctx context.Context) (stats.Stats, error)
}

// Client is the single chat session of the process. Join, Send and Leave may be
// called from any goroutine; everything else happens inside Run.
type Client struct {
	cfg       Config
	view      View
	dialer    transport.Dialer
	fetcher   StatsFetcher
	indicator *status.Indicator

	events chan event
	done   chan struct{}
	snap   snapshotStore

	// Owned by Run.
	ctx           context.Context
	sess          session.Session
	conn          transport.Conn
	connSeq       uint64
	cancelDial    context.CancelFunc
	statsInFlight bool
	statsPending  bool
}

func New(cfg Config, view View, dialer transport.Dialer, fetcher StatsFetcher) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		cfg:       cfg,
		view:      view,
		dialer:    dialer,
		fetcher:   fetcher,
		indicator: status.NewIndicator(view, cfg.StatusTTL),
		events:    make(chan event, 64),
		done:      make(chan struct{}),
		snap:      snapshotStore{limit: cfg.HistorySize},
	}
	c.snap.update(func(s *Snapshot) {
		s.ServerURL = cfg.ServerURL
		s.State = session.Disconnected.String()
	})
	return c, nil
}

// Join validates the nickname and connects with it.
func (c *Client) Join(username string) { c.post(joinRequested{username: username}) }

// Send writes text to the room. It is a no-op unless connected.
func (c *Client) Send(text string) { c.post(sendRequested{text: text}) }

// Leave closes the connection and returns to the login view.
func (c *Client) Leave() { c.post(leaveRequested{}) }

func (c *Client) Snapshot() Snapshot { return c.snap.get() }

// Done is closed when Run has returned.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) post(ev event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// Run processes events until ctx is cancelled. It must be called once.
func (c *Client) Run(ctx context.Context) {
	defer close(c.done)
	c.ctx = ctx

	statsTicker := time.NewTicker(c.cfg.StatsInterval)
	defer statsTicker.Stop()
	statusTicker := time.NewTicker(c.cfg.StatusInterval)
	defer statusTicker.Stop()
	defer c.indicator.Stop()

	c.view.ShowLogin()
	c.refreshStats()

	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return
		case ev := <-c.events:
			c.handle(ev)
		case <-statsTicker.C:
			c.refreshStats()
		case <-statusTicker.C:
			c.indicator.Flash(c.sess.State)
		}
	}
}

func (c *Client) handle(ev event) {
	switch ev := ev.(type) {
	case joinRequested:
		c.join(ev.username)
	case sendRequested:
		c.send(ev.text)
	case leaveRequested:
		c.apply(session.Leave)
	case dialed:
		c.onDialed(ev)
	case frameReceived:
		c.onFrame(ev)
	case connClosed:
		c.onClosed(ev)
	case statsFetched:
		c.onStats(ev)
	}
}

func (c *Client) logger() *zerolog.Logger {
	lc := log.With().Str("state", c.sess.State.String())
	if c.sess.Username != "" {
		lc = lc.Str("session", c.sess.ID.String()).Str("user", c.sess.Username)
	}
	l := lc.Logger()
	return &l
}

func (c *Client) join(raw string) {
	name, err := render.ValidateUsername(raw)
	if err != nil {
		c.view.Alert(noticeNickname)
		return
	}
	effects, ok := c.sess.Begin(name)
	if !ok {
		c.logger().Debug().Msg("[chat] join ignored; already connecting or connected")
		return
	}
	c.logger().Info().Msg("[chat] joining")
	c.runEffects(effects)
}

// apply moves the session along the transition table and runs the resulting effects.
func (c *Client) apply(t session.Trigger) {
	l := c.logger()
	effects, ok := c.sess.Apply(t)
	if !ok {
		l.Debug().Stringer("trigger", t).Msg("[chat] trigger ignored")
		return
	}
	l.Info().Stringer("trigger", t).Stringer("next", c.sess.State).Msg("[chat] state change")
	c.runEffects(effects)
	if c.sess.State == session.Disconnected {
		// Invalidate anything still in flight for the old connection.
		c.conn = nil
		c.cancelDial = nil
		c.connSeq++
	}
}

func (c *Client) runEffects(effects session.Effect) {
	if effects.Has(session.Dial) {
		c.dial()
	}
	if effects.Has(session.CloseTransport) {
		c.closeTransport()
	}
	if effects.Has(session.Alert) {
		c.view.Alert(noticeConnection)
	}
	if effects.Has(session.ShowChat) {
		c.view.ShowChat()
	}
	if effects.Has(session.ShowLogin) {
		c.view.ShowLogin()
	}
	if effects.Has(session.RefreshStats) {
		c.refreshStats()
	}
	c.snap.update(func(s *Snapshot) {
		s.Username = c.sess.Username
		s.State = c.sess.State.String()
	})
}

func (c *Client) dial() {
	c.connSeq++
	seq := c.connSeq
	username := c.sess.Username
	ctx, cancel := context.WithTimeout(c.ctx, c.cfg.DialTimeout)
	c.cancelDial = cancel
	go func() {
		defer cancel()
		conn, err := c.dialer.Dial(ctx, username)
		c.post(dialed{seq: seq, conn: conn, err: err})
	}()
}

func (c *Client) closeTransport() {
	if c.cancelDial != nil {
		c.cancelDial()
		c.cancelDial = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger().Debug().Err(err).Msg("[chat] close connection")
		}
	}
}

func (c *Client) onDialed(ev dialed) {
	if ev.seq != c.connSeq || c.sess.State != session.Connecting {
		if ev.conn != nil {
			_ = ev.conn.Close()
		}
		return
	}
	c.cancelDial = nil
	if ev.err != nil {
		c.logger().Warn().Err(ev.err).Msg("[chat] connect failed")
		c.apply(session.Failed)
		return
	}

	c.conn = ev.conn
	c.apply(session.Opened)
	seq := ev.seq
	ev.conn.Listen(
		func(data []byte) { c.post(frameReceived{seq: seq, data: data}) },
		func(err error) { c.post(connClosed{seq: seq, err: err}) },
	)
}

func (c *Client) onFrame(ev frameReceived) {
	if ev.seq != c.connSeq {
		return
	}
	m, err := protocol.Decode(ev.data)
	if err != nil {
		c.logger().Warn().Err(err).Int("bytes", len(ev.data)).Msg("[chat] dropping malformed frame")
		return
	}
	e := render.NewEntry(m, c.sess.Username)
	c.view.AppendEntry(e)
	c.snap.record(e)
	c.refreshStats()
}

func (c *Client) onClosed(ev connClosed) {
	if ev.seq != c.connSeq {
		return
	}
	if transport.Unexpected(ev.err) {
		c.logger().Warn().Err(ev.err).Msg("[chat] connection lost")
		c.apply(session.Failed)
		return
	}
	c.apply(session.Closed)
}

func (c *Client) send(text string) {
	if !c.sess.Connected() || c.conn == nil {
		return
	}
	m, err := protocol.NewMessage(c.sess.Username, text, time.Now())
	if err != nil {
		return
	}
	payload, err := protocol.Encode(m)
	if err != nil {
		c.logger().Error().Err(err).Msg("[chat] encode message")
		return
	}
	if err := c.conn.Send(payload); err != nil {
		c.logger().Warn().Err(err).Msg("[chat] send failed")
		return
	}
	c.view.ClearMessageInput(text)
}

// refreshStats starts a fetch, or queues one if a fetch is already running.
func (c *Client) refreshStats() {
	if c.statsInFlight {
		c.statsPending = true
		return
	}
	c.statsInFlight = true
	go func() {
		ctx, cancel := context.WithTimeout(c.ctx, c.cfg.StatsTimeout)
		defer cancel()
		s, err := c.fetcher.Fetch(ctx)
		c.post(statsFetched{stats: s, err: err})
	}()
}

func (c *Client) onStats(ev statsFetched) {
	c.statsInFlight = false
	if ev.err != nil {
		log.Warn().Err(ev.err).Msg("[chat] stats refresh failed")
	} else {
		c.view.SetStats(ev.stats)
		c.snap.update(func(s *Snapshot) {
			s.OnlineUsers = ev.stats.OnlineUsers
			s.TotalMessages = ev.stats.TotalMessages
		})
	}
	if c.statsPending {
		c.statsPending = false
		c.refreshStats()
	}
}

func (c *Client) shutdown() {
	if c.sess.State == session.Disconnected {
		return
	}
	c.logger().Info().Msg("[chat] leaving on shutdown")
	c.closeTransport()
}
