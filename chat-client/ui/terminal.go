// Package ui is the terminal front end: a login page and a chat page switched with
// tview.Pages, plus a modal for notices and a transient status badge.
package ui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/gosuda/chatroom/chat-client/render"
	"github.com/gosuda/chatroom/chat-client/stats"
	"github.com/gosuda/chatroom/chat-client/status"
)

// updateBuffer bounds view updates waiting for the tview event loop.
const updateBuffer = 256

// Page and primitive names.
const (
	PageLogin = "login-section"
	PageChat  = "chat-section"
	pageAlert = "alert"
)

// Actions receives user intents. Implementations must not block.
type Actions interface {
	Join(username string)
	Send(text string)
	Leave()
}

type Terminal struct {
	app     *tview.Application
	actions Actions

	// updates feeds forward; done is closed once the event loop is gone or never
	// going to run, after which view calls are dropped.
	updates  chan func()
	done     chan struct{}
	doneOnce sync.Once

	root          *tview.Flex
	pages         *tview.Pages
	usernameInput *tview.InputField
	messageInput  *tview.InputField
	messages      *tview.TextView
	onlineCount   *tview.TextView
	messageCount  *tview.TextView
	badge         *tview.TextView

	// Only touched inside the tview event loop.
	page string
}

// New builds the UI. Bind must be called before Run.
func New(serverURL string) *Terminal {
	t := &Terminal{
		app:     tview.NewApplication(),
		page:    PageLogin,
		updates: make(chan func(), updateBuffer),
		done:    make(chan struct{}),
	}
	t.build(serverURL)
	t.app.SetRoot(t.root, true).SetFocus(t.usernameInput).EnableMouse(true)
	go t.forward()
	return t
}

func (t *Terminal) Bind(a Actions) { t.actions = a }

// Prefill puts a nickname into the login input.
func (t *Terminal) Prefill(username string) { t.usernameInput.SetText(username) }

// Run blocks until Stop is called or the user quits with Ctrl-C. It also returns
// when the terminal cannot be opened.
func (t *Terminal) Run() error {
	defer t.finish()
	select {
	case <-t.done:
		return nil
	default:
	}
	return t.app.Run()
}

func (t *Terminal) Stop() {
	t.finish()
	t.app.Stop()
}

// Done is closed when the UI has stopped.
func (t *Terminal) Done() <-chan struct{} { return t.done }

func (t *Terminal) finish() { t.doneOnce.Do(func() { close(t.done) }) }

// forward hands updates to tview one at a time. QueueUpdateDraw waits for the event
// loop, so it runs here and never on a caller's goroutine.
func (t *Terminal) forward() {
	for {
		select {
		case <-t.done:
			return
		case fn := <-t.updates:
			t.app.QueueUpdateDraw(fn)
		}
	}
}

func (t *Terminal) build(serverURL string) {
	t.usernameInput = tview.NewInputField().
		SetLabel("Nickname ").
		SetFieldWidth(32).
		SetPlaceholder("enter a nickname")
	t.usernameInput.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			t.join()
		}
	})
	joinButton := tview.NewButton("Join").SetSelectedFunc(t.join)

	loginForm := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(tview.NewTextView().SetTextAlign(tview.AlignCenter).SetText("chat room @ "+serverURL), 2, 0, false).
		AddItem(t.usernameInput, 1, 0, true).
		AddItem(nil, 1, 0, false).
		AddItem(joinButton, 1, 0, false)
	loginForm.SetBorder(true).SetTitle(" Join ")
	login := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(loginForm, 7, 0, true).
			AddItem(nil, 0, 1, false), 48, 0, true).
		AddItem(nil, 0, 1, false)

	t.onlineCount = tview.NewTextView().SetDynamicColors(true)
	t.messageCount = tview.NewTextView().SetDynamicColors(true)
	t.setStats(stats.Stats{})
	header := tview.NewFlex().
		AddItem(t.onlineCount, 0, 1, false).
		AddItem(t.messageCount, 0, 1, false).
		AddItem(tview.NewTextView().SetTextAlign(tview.AlignRight).SetText("Esc to leave"), 0, 1, false)

	t.messages = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	t.messages.SetBorder(true).SetTitle(" Messages ")

	t.messageInput = tview.NewInputField().
		SetLabel("> ").
		SetPlaceholder("type a message")
	t.messageInput.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			t.send()
		case tcell.KeyEscape:
			if t.actions != nil {
				t.actions.Leave()
			}
		}
	})
	sendButton := tview.NewButton("Send").SetSelectedFunc(t.send)
	composer := tview.NewFlex().
		AddItem(t.messageInput, 0, 1, true).
		AddItem(sendButton, 8, 0, false)

	chat := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, 1, 0, false).
		AddItem(t.messages, 0, 1, false).
		AddItem(composer, 1, 0, true)

	t.pages = tview.NewPages().
		AddPage(PageLogin, login, true, true).
		AddPage(PageChat, chat, true, false)

	t.badge = tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignRight)
	t.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.pages, 0, 1, true).
		AddItem(t.badge, 1, 0, false)
}

func (t *Terminal) join() {
	if t.actions != nil {
		t.actions.Join(t.usernameInput.GetText())
	}
}

// send leaves the input alone; the client clears it once the write succeeds.
func (t *Terminal) send() {
	if t.actions != nil {
		t.actions.Send(t.messageInput.GetText())
	}
}

func (t *Terminal) queue(fn func()) {
	select {
	case <-t.done:
	case t.updates <- fn:
	}
}

func (t *Terminal) ShowLogin()                    { t.queue(t.showLogin) }
func (t *Terminal) ShowChat()                     { t.queue(t.showChat) }
func (t *Terminal) AppendEntry(e render.Entry)    { t.queue(func() { t.appendEntry(e) }) }
func (t *Terminal) ClearMessageInput(sent string) { t.queue(func() { t.clearMessageInput(sent) }) }
func (t *Terminal) SetStats(s stats.Stats)        { t.queue(func() { t.setStats(s) }) }
func (t *Terminal) Alert(msg string)              { t.queue(func() { t.alert(msg) }) }
func (t *Terminal) ShowBadge(b status.Badge)      { t.queue(func() { t.badge.SetText(badgeText(b)) }) }
func (t *Terminal) FadeBadge()                    { t.queue(t.fadeBadge) }
func (t *Terminal) HideBadge()                    { t.queue(func() { t.badge.Clear() }) }

func (t *Terminal) showLogin() {
	t.switchTo(PageLogin)
	t.messageInput.SetText("")
}

func (t *Terminal) showChat() {
	t.switchTo(PageChat)
}

func (t *Terminal) switchTo(page string) {
	t.page = page
	t.pages.SwitchToPage(page)
	t.focusPage()
}

func (t *Terminal) focusPage() {
	if t.page == PageChat {
		t.app.SetFocus(t.messageInput)
		return
	}
	t.app.SetFocus(t.usernameInput)
}

func (t *Terminal) appendEntry(e render.Entry) {
	fmt.Fprintln(t.messages, render.Terminal(e))
	t.messages.ScrollToEnd()
}

func (t *Terminal) clearMessageInput(sent string) {
	if strings.TrimSpace(t.messageInput.GetText()) == strings.TrimSpace(sent) {
		t.messageInput.SetText("")
	}
}

func (t *Terminal) setStats(s stats.Stats) {
	t.onlineCount.SetText(fmt.Sprintf("online [::b]%d[::-]", s.OnlineUsers))
	t.messageCount.SetText(fmt.Sprintf("messages [::b]%d[::-]", s.TotalMessages))
}

func (t *Terminal) alert(msg string) {
	modal := tview.NewModal().
		SetText(msg).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(int, string) {
			t.pages.RemovePage(pageAlert)
			t.focusPage()
		})
	t.pages.RemovePage(pageAlert)
	t.pages.AddPage(pageAlert, modal, false, true)
	t.app.SetFocus(modal)
}

func (t *Terminal) fadeBadge() {
	if text := t.badge.GetText(true); text != "" {
		t.badge.SetText("[gray]" + tview.Escape(text) + "[-]")
	}
}

func badgeText(b status.Badge) string {
	color := "red"
	if b.Connected {
		color = "green"
	}
	return fmt.Sprintf("[%s]%s[-] ", color, b.Label)
}
