// Package console implements the append-only message history kept by
// the server's world manager; the client mirrors it as rendered lines.
package console

import (
	"sync"
	"time"
)

// Severity is drawn from a fixed palette; clients map each value to a
// color/weight for rendering.
type Severity uint8

const (
	Normal Severity = iota
	System
	Unimportant
	Defeat
	Danger
	Important
	Special
	Combat
)

// PrinterKind tags a Printer variant.
type PrinterKind uint8

const (
	Plain PrinterKind = iota
	Dialogue
)

// Printer describes how a message should be presented: a plain line, or
// a dialogue line attributed to a speaker with a reveal-progress
// counter the client animates over time. The scheduler never blocks on
// reveal progress; it's purely a client-side presentation detail.
type Printer struct {
	Kind     PrinterKind
	Speaker  string // Dialogue only
	Progress int    // Dialogue only; chars revealed so far
}

// PlainPrinter returns a Plain printer variant.
func PlainPrinter() Printer { return Printer{Kind: Plain} }

// DialoguePrinter returns a Dialogue printer variant attributed to speaker.
func DialoguePrinter(speaker string) Printer { return Printer{Kind: Dialogue, Speaker: speaker} }

// Message is one entry in a console's history.
type Message struct {
	Text      string
	Severity  Severity
	Printer   Printer
	CreatedAt time.Time
}

// Console is an append-only message history. send_message (SendMessage
// here) is safe to call from any goroutine; delivery is at-most-once
// and in-order per caller because every append takes the same mutex
// before touching history, the same mutex discipline internal/server's
// ClientParty uses. World state takes no lock; only the server's main
// loop touches it.
type Console struct {
	mu      sync.Mutex
	history []Message
	nowFn   func() time.Time
}

// New returns an empty console. nowFn defaults to time.Now; tests may
// override it via WithClock for deterministic timestamps.
func New() *Console {
	return &Console{nowFn: time.Now}
}

// WithClock overrides the console's time source, for deterministic tests.
func (c *Console) WithClock(nowFn func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nowFn = nowFn
}

// SendMessage appends a message to the history.
func (c *Console) SendMessage(text string, severity Severity, printer Printer) Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := Message{Text: text, Severity: severity, Printer: printer, CreatedAt: c.nowFn()}
	c.history = append(c.history, msg)
	return msg
}

// Println appends a Normal-severity, Plain-printer message — the
// common case used by scripts and internal log lines alike.
func (c *Console) Println(text string) Message {
	return c.SendMessage(text, Normal, PlainPrinter())
}

// History returns a copy of the full message history, oldest first.
func (c *Console) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]Message, len(c.history))
	copy(cp, c.history)
	return cp
}

// Since returns every message from index idx onward (the messages
// appended after the first idx), used by internal/server's broadcast to
// send only the messages its cursor has not yet forwarded.
func (c *Console) Since(idx int) []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx >= len(c.history) {
		return nil
	}
	if idx < 0 {
		idx = 0
	}
	cp := make([]Message, len(c.history)-idx)
	copy(cp, c.history[idx:])
	return cp
}

// Len reports the number of messages appended so far.
func (c *Console) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.history)
}
