package model

import (
	"sync"
	"unicode/utf8"
)

// TextCapacity is the byte size of every inbound string buffer, terminator
// included. At most TextCapacity-1 bytes are ever stored.
const TextCapacity = 32

// Text is a fixed-capacity string buffer. Writes are silent truncating
// copies; the zero value is an empty buffer ready for use. The watch loop
// writes buffers that the renderer reads from another goroutine, so every
// access holds mu.
type Text struct {
	mu  sync.RWMutex
	buf [TextCapacity - 1]byte
	n   int
}

// NewText returns a buffer holding s, truncated to capacity.
func NewText(s string) *Text {
	t := &Text{}
	t.Set(s)
	return t
}

// Set replaces the content with s. Input longer than TextCapacity-1 bytes is
// cut, and a rune split by the cut is dropped.
func (t *Text) Set(s string) {
	if len(s) > len(t.buf) {
		s = cutPartialRune(s[:len(t.buf)])
	}
	t.mu.Lock()
	t.n = copy(t.buf[:], s)
	t.mu.Unlock()
}

// cutPartialRune drops a trailing incomplete UTF-8 sequence. Bytes that are
// invalid on their own are kept.
func cutPartialRune(s string) string {
	for i := 1; i < utf8.UTFMax && i <= len(s); i++ {
		if !utf8.RuneStart(s[len(s)-i]) {
			continue
		}
		if !utf8.FullRuneInString(s[len(s)-i:]) {
			return s[:len(s)-i]
		}
		return s
	}
	return s
}

// String returns the stored text.
func (t *Text) String() string {
	if t == nil {
		return ""
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return string(t.buf[:t.n])
}

// Len returns the number of stored bytes.
func (t *Text) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.n
}

// Reset empties the buffer.
func (t *Text) Reset() {
	t.mu.Lock()
	t.n = 0
	t.mu.Unlock()
}

// LastKnown holds the most recently received weather strings. Cards borrow
// these buffers, so an update is visible on the live card immediately.
type LastKnown struct {
	Location    *Text
	Conditions  *Text
	Temperature *Text
}

// NewLastKnown allocates the three empty buffers.
func NewLastKnown() *LastKnown {
	return &LastKnown{
		Location:    &Text{},
		Conditions:  &Text{},
		Temperature: &Text{},
	}
}

// Values is a copy of the last-known strings, safe to hand across goroutines.
type Values struct {
	Location    string `json:"location"`
	Conditions  string `json:"conditions"`
	Temperature string `json:"temperature"`
}

// Snapshot copies the current buffer contents.
func (l *LastKnown) Snapshot() Values {
	return Values{
		Location:    l.Location.String(),
		Conditions:  l.Conditions.String(),
		Temperature: l.Temperature.String(),
	}
}
