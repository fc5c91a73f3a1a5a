package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/chatroom/chat-client/render"
	"github.com/gosuda/chatroom/chat-client/stats"
	"github.com/gosuda/chatroom/chat-client/status"
)

type actionRecorder struct {
	joins  []string
	sends  []string
	leaves int
}

func (r *actionRecorder) Join(username string) { r.joins = append(r.joins, username) }
func (r *actionRecorder) Send(text string)     { r.sends = append(r.sends, text) }
func (r *actionRecorder) Leave()               { r.leaves++ }

func press(p tview.Primitive, key tcell.Key) {
	p.InputHandler()(tcell.NewEventKey(key, 0, tcell.ModNone), func(tview.Primitive) {})
}

func newTerminal(t *testing.T) (*Terminal, *actionRecorder) {
	t.Helper()
	term := New("http://chat.test")
	rec := &actionRecorder{}
	term.Bind(rec)
	return term, rec
}

func TestStartsOnLoginPage(t *testing.T) {
	term, _ := newTerminal(t)

	name, _ := term.pages.GetFrontPage()
	assert.Equal(t, PageLogin, name)
	assert.False(t, term.pages.HasPage(pageAlert))
}

func TestEnterInUsernameJoins(t *testing.T) {
	term, rec := newTerminal(t)
	term.Prefill("  Alice ")

	press(term.usernameInput, tcell.KeyEnter)

	assert.Equal(t, []string{"  Alice "}, rec.joins)
}

func TestEnterInMessageInputSendsWithoutClearing(t *testing.T) {
	term, rec := newTerminal(t)
	term.messageInput.SetText("hello")

	press(term.messageInput, tcell.KeyEnter)

	assert.Equal(t, []string{"hello"}, rec.sends)
	assert.Equal(t, "hello", term.messageInput.GetText())
}

func TestEscapeLeaves(t *testing.T) {
	term, rec := newTerminal(t)

	press(term.messageInput, tcell.KeyEscape)

	assert.Equal(t, 1, rec.leaves)
}

func TestClearMessageInputOnlyWhenUnchanged(t *testing.T) {
	term, _ := newTerminal(t)

	term.messageInput.SetText("next draft")
	term.clearMessageInput("hello")
	assert.Equal(t, "next draft", term.messageInput.GetText())

	term.messageInput.SetText(" hello ")
	term.clearMessageInput("hello")
	assert.Empty(t, term.messageInput.GetText())
}

func TestPageSwitching(t *testing.T) {
	term, _ := newTerminal(t)

	term.showChat()
	name, _ := term.pages.GetFrontPage()
	assert.Equal(t, PageChat, name)
	assert.Equal(t, PageChat, term.page)

	term.messageInput.SetText("unsent")
	term.showLogin()
	name, _ = term.pages.GetFrontPage()
	assert.Equal(t, PageLogin, name)
	assert.Empty(t, term.messageInput.GetText())
	assert.Equal(t, PageLogin, term.page)
}

func TestAlertOverlaysCurrentPage(t *testing.T) {
	term, _ := newTerminal(t)

	term.alert("Connection failed, please retry.")
	term.alert("Please enter a nickname.")

	name, _ := term.pages.GetFrontPage()
	assert.Equal(t, pageAlert, name)
	assert.Equal(t, 3, term.pages.GetPageCount())
}

func TestAppendEntryEscapesMarkup(t *testing.T) {
	term, _ := newTerminal(t)
	when := time.Date(2024, 5, 1, 3, 4, 5, 0, time.UTC)

	term.appendEntry(render.Entry{Class: render.ClassOther, Username: "[red]Mallory", Content: "[yellow]boo", Time: when})
	term.appendEntry(render.Entry{Class: render.ClassSystem, Content: "Bob joined"})

	raw := term.messages.GetText(false)
	lines := strings.Split(strings.TrimRight(raw, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[red[]Mallory")
	assert.Contains(t, lines[0], "[yellow[]boo")
	assert.Contains(t, lines[1], "--:--:--")
	assert.Contains(t, lines[1], "Bob joined")
}

func TestStatsCounters(t *testing.T) {
	term, _ := newTerminal(t)

	assert.Equal(t, "online 0", term.onlineCount.GetText(true))
	term.setStats(stats.Stats{OnlineUsers: 3, TotalMessages: 42})
	assert.Equal(t, "online 3", term.onlineCount.GetText(true))
	assert.Equal(t, "messages 42", term.messageCount.GetText(true))
}

func TestBadge(t *testing.T) {
	term, _ := newTerminal(t)

	assert.Equal(t, "[green]● connected[-] ", badgeText(status.Badge{Label: "● connected", Connected: true}))
	assert.Equal(t, "[red]● disconnected[-] ", badgeText(status.Badge{Label: "● disconnected"}))

	term.fadeBadge()
	assert.Empty(t, term.badge.GetText(false))

	term.badge.SetText(badgeText(status.Badge{Label: "● connected", Connected: true}))
	term.fadeBadge()
	assert.True(t, strings.HasPrefix(term.badge.GetText(false), "[gray]● connected"))
}

func TestStopBeforeRunDropsUpdates(t *testing.T) {
	term, _ := newTerminal(t)
	term.Stop()

	require.NoError(t, term.Run())
	select {
	case <-term.Done():
	default:
		t.Fatal("done not closed after Stop")
	}

	term.ShowChat()
	term.Alert("late")
	term.HideBadge()

	name, _ := term.pages.GetFrontPage()
	assert.Equal(t, PageLogin, name)
}

func TestViewCallsNeverBlockAfterRunReturns(t *testing.T) {
	term, _ := newTerminal(t)
	term.Stop()
	require.NoError(t, term.Run())

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		// More calls than the update buffer holds.
		for i := 0; i < 2*updateBuffer; i++ {
			term.ShowBadge(status.Badge{Label: "● disconnected"})
			term.FadeBadge()
			term.AppendEntry(render.Entry{Content: "late"})
		}
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("view calls blocked after the UI stopped")
	}
}

func TestQueuedUpdatesWaitForRun(t *testing.T) {
	term, _ := newTerminal(t)

	// Nothing is running yet; queueing must still return.
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for i := 0; i < updateBuffer/2; i++ {
			term.SetStats(stats.Stats{OnlineUsers: i})
		}
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("queueing blocked before the UI started")
	}
	term.Stop()
}
