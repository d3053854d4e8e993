package client

import (
	"fmt"
	"html"
	"io"
	"sync"
)

// RenderedMessage is one display-ready message line. Body is still
// HTML-escaped text; the renderer decides how entities appear.
type RenderedMessage struct {
	Clock  string // HH:MM:SS from the message timestamp
	Sender string // sender's username, or "You" for own messages
	Own    bool
	Body   string
}

// Renderer receives display updates from the sync loops. AppendMessage is
// called once per newly seen message; ReplaceRoster replaces the previous
// roster wholesale rather than merging into it.
type Renderer interface {
	AppendMessage(RenderedMessage)
	ReplaceRoster(users []string)
}

// ConsoleRenderer writes the feed to a terminal. Entities are resolved for
// display here because a terminal renders text, not markup.
type ConsoleRenderer struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleRenderer(out io.Writer) *ConsoleRenderer {
	return &ConsoleRenderer{out: out}
}

func (c *ConsoleRenderer) AppendMessage(m RenderedMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	marker := " "
	if m.Own {
		marker = "*"
	}
	fmt.Fprintf(c.out, "[%s]%s%s: %s\n", m.Clock, marker, m.Sender, html.UnescapeString(m.Body))
}

func (c *ConsoleRenderer) ReplaceRoster(users []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "-- online (%d): %v\n", len(users), users)
}
