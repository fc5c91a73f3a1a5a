// Package render turns decoded chat frames into display entries.
package render

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"github.com/gosuda/chatroom/chat-client/protocol"
)

// Class is the origin of a message as shown to the user.
type Class uint8

const (
	ClassOther Class = iota
	ClassOwn
	ClassSystem
)

func (c Class) String() string {
	switch c {
	case ClassOwn:
		return "own"
	case ClassSystem:
		return "system"
	default:
		return "other"
	}
}

func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Classify decides how a message is presented. Room notices are system messages even
// when they name the current user.
func Classify(m protocol.Message, self string) Class {
	switch {
	case m.Kind.IsSystem():
		return ClassSystem
	case self != "" && m.Username == self:
		return ClassOwn
	default:
		return ClassOther
	}
}

// Entry is one rendered line of the message list. Fields hold raw text; each
// output medium escapes them itself.
type Entry struct {
	Class    Class     `json:"class"`
	Username string    `json:"username"`
	Content  string    `json:"content"`
	Time     time.Time `json:"time"`
}

func NewEntry(m protocol.Message, self string) Entry {
	return Entry{
		Class:    Classify(m, self),
		Username: m.Username,
		Content:  m.Content,
		Time:     m.Timestamp,
	}
}

// Clock is the local wall-clock time of the entry.
func (e Entry) Clock() string {
	if e.Time.IsZero() {
		return "--:--:--"
	}
	return e.Time.Local().Format("15:04:05")
}

// Terminal formats e for a tview TextView with dynamic colors enabled. User-supplied
// text is escaped so that "[red]" and friends show up literally.
func Terminal(e Entry) string {
	content := tview.Escape(e.Content)
	switch e.Class {
	case ClassSystem:
		return fmt.Sprintf("[gray]%s  * %s[-]", e.Clock(), content)
	case ClassOwn:
		return fmt.Sprintf("[gray]%s[-] [green::b]%s[-::-] %s", e.Clock(), tview.Escape(e.Username), content)
	default:
		return fmt.Sprintf("[gray]%s[-] [aqua::b]%s[-::-] %s", e.Clock(), tview.Escape(e.Username), content)
	}
}
