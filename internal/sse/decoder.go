package sse

import (
	"bytes"

	"github.com/Conceptual-Machines/reelmate-api/internal/models"
	ginsse "github.com/gin-contrib/sse"
)

// Frame is one complete event read off the wire
type Frame struct {
	Kind models.OutcomeKind
	Data string
}

var frameBoundary = []byte("\n\n")

// Decoder reassembles frames from arbitrarily split network reads. Bytes
// after the last blank-line boundary stay buffered until more data arrives.
// A trailing '\r' is held back so a CRLF split across reads still folds to '\n'.
type Decoder struct {
	buf       []byte
	pendingCR bool
}

// NewDecoder creates an empty decoder
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends a chunk and returns every frame it completed
func (d *Decoder) Feed(chunk []byte) []Frame {
	if d.pendingCR {
		chunk = append([]byte{'\r'}, chunk...)
		d.pendingCR = false
	}
	if n := len(chunk); n > 0 && chunk[n-1] == '\r' {
		chunk = chunk[:n-1]
		d.pendingCR = true
	}
	d.buf = append(d.buf, bytes.ReplaceAll(chunk, []byte("\r\n"), []byte("\n"))...)

	var frames []Frame
	for {
		idx := bytes.Index(d.buf, frameBoundary)
		if idx < 0 {
			break
		}
		block := d.buf[:idx]
		d.buf = d.buf[idx+len(frameBoundary):]
		if frame, ok := parseFrame(block); ok {
			frames = append(frames, frame)
		}
	}
	return frames
}

// Flush parses whatever is left in the buffer once the stream has ended
func (d *Decoder) Flush() []Frame {
	block := d.buf
	d.buf = nil
	d.pendingCR = false
	if frame, ok := parseFrame(block); ok {
		return []Frame{frame}
	}
	return nil
}

// Buffered returns the number of bytes waiting for a frame boundary
func (d *Decoder) Buffered() int {
	if d.pendingCR {
		return len(d.buf) + 1
	}
	return len(d.buf)
}

func parseFrame(block []byte) (Frame, bool) {
	if len(bytes.TrimSpace(block)) == 0 {
		return Frame{}, false
	}
	events, err := ginsse.Decode(bytes.NewReader(block))
	if err != nil || len(events) == 0 {
		return Frame{}, false
	}

	event := events[0]
	data, _ := event.Data.(string)
	if data == "" {
		return Frame{}, false
	}

	kind := models.OutcomeKind(event.Event)
	if kind == "message" {
		kind = models.OutcomeProgress
	}
	return Frame{Kind: kind, Data: data}, true
}
