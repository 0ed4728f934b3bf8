// Package messages is the side channel through which the layout engine
// reports data problems.
//
// The engine never fails a pass because of bad annotation data. Dangling
// references, out-of-range offsets and unknown attribute values are posted
// as [Message] values with a [Severity] and an error code, the offending
// element is skipped, and the caller receives the (possibly partial) layout
// together with everything that was posted.
//
// # Usage
//
//	var c messages.Collector
//	doc := annotation.Build(src, coll, &c)
//	for _, m := range c.Messages() {
//	    fmt.Println(m.Severity, m.Text)
//	}
package messages

import (
	"fmt"
	"sync"

	"github.com/matzehuels/spantower/pkg/errors"
)

// Severity classifies a message.
type Severity string

// Severity levels, from most to least severe.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityComment Severity = "comment"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityError, SeverityWarning, SeverityComment:
		return true
	}
	return false
}

// Message is a single report on the message channel.
type Message struct {
	Severity Severity    `json:"severity" bson:"severity"`
	Code     errors.Code `json:"code,omitempty" bson:"code,omitempty"`
	Text     string      `json:"text" bson:"text"`
}

// String formats the message as "severity: text".
func (m Message) String() string {
	return fmt.Sprintf("%s: %s", m.Severity, m.Text)
}

// Err converts the message into a coded error.
func (m Message) Err() error {
	return errors.New(m.Code, "%s", m.Text)
}

// Errorf builds an error-severity message.
func Errorf(code errors.Code, format string, args ...any) Message {
	return Message{Severity: SeverityError, Code: code, Text: fmt.Sprintf(format, args...)}
}

// Warningf builds a warning-severity message.
func Warningf(code errors.Code, format string, args ...any) Message {
	return Message{Severity: SeverityWarning, Code: code, Text: fmt.Sprintf(format, args...)}
}

// Commentf builds a comment-severity message.
func Commentf(format string, args ...any) Message {
	return Message{Severity: SeverityComment, Text: fmt.Sprintf(format, args...)}
}

// Sink receives posted messages.
type Sink interface {
	Post(Message)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Message)

// Post calls f(m).
func (f SinkFunc) Post(m Message) { f(m) }

// Discard is a Sink that drops everything.
var Discard Sink = SinkFunc(func(Message) {})

// Tee returns a Sink that posts to every non-nil sink in order.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(m Message) {
		for _, s := range sinks {
			if s != nil {
				s.Post(m)
			}
		}
	})
}

// Collector accumulates messages. The zero value is ready to use and it is
// safe for concurrent use.
type Collector struct {
	mu   sync.Mutex
	msgs []Message
}

// Post appends m.
func (c *Collector) Post(m Message) {
	c.mu.Lock()
	c.msgs = append(c.msgs, m)
	c.mu.Unlock()
}

// Messages returns a copy of everything posted so far.
func (c *Collector) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

// Count returns the number of messages with the given severity.
func (c *Collector) Count(s Severity) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, m := range c.msgs {
		if m.Severity == s {
			n++
		}
	}
	return n
}

// HasCode reports whether any message carries code.
func (c *Collector) HasCode(code errors.Code) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.msgs {
		if m.Code == code {
			return true
		}
	}
	return false
}

// Reset drops all collected messages.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.msgs = nil
	c.mu.Unlock()
}

// Ensure Collector implements Sink.
var _ Sink = (*Collector)(nil)
