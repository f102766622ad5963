package sse

import (
	"testing"

	"github.com/Conceptual-Machines/reelmate-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder_WholeFrames(t *testing.T) {
	frames := NewDecoder().Feed([]byte(
		"event: progress\ndata: {\"message\":\"a\",\"detail\":\"\"}\n\n" +
			"event: done\ndata: {\"ok\":true}\n\n",
	))

	require.Len(t, frames, 2)
	assert.Equal(t, models.OutcomeProgress, frames[0].Kind)
	assert.Equal(t, `{"message":"a","detail":""}`, frames[0].Data)
	assert.Equal(t, models.OutcomeDone, frames[1].Kind)
	assert.Equal(t, `{"ok":true}`, frames[1].Data)
}

func TestDecoder_SplitAcrossReads(t *testing.T) {
	stream := "event: result\ndata: {\"title\":\"Dune Part Two\"}\n\nevent: done\ndata: {\"ok\":true}\n\n"
	decoder := NewDecoder()

	var frames []Frame
	for i := 0; i < len(stream); i += 7 {
		end := i + 7
		if end > len(stream) {
			end = len(stream)
		}
		frames = append(frames, decoder.Feed([]byte(stream[i:end]))...)
	}

	require.Len(t, frames, 2)
	assert.Equal(t, models.OutcomeResult, frames[0].Kind)
	assert.Equal(t, `{"title":"Dune Part Two"}`, frames[0].Data)
	assert.Equal(t, models.OutcomeDone, frames[1].Kind)
	assert.Zero(t, decoder.Buffered())
}

func TestDecoder_PartialFrameStaysBuffered(t *testing.T) {
	decoder := NewDecoder()
	assert.Empty(t, decoder.Feed([]byte("event: progress\ndata: {\"message\"")))
	assert.Positive(t, decoder.Buffered())

	frames := decoder.Feed([]byte(":\"x\",\"detail\":\"\"}\n\n"))
	require.Len(t, frames, 1)
	assert.Equal(t, `{"message":"x","detail":""}`, frames[0].Data)
}

func TestDecoder_CRLFAndNoSpace(t *testing.T) {
	frames := NewDecoder().Feed([]byte("event:error\r\ndata:{\"message\":\"m\"}\r\n\r\n"))
	require.Len(t, frames, 1)
	assert.Equal(t, models.OutcomeFailure, frames[0].Kind)
	assert.Equal(t, `{"message":"m"}`, frames[0].Data)
}

func TestDecoder_CRLFSplitBetweenReads(t *testing.T) {
	d := NewDecoder()
	assert.Empty(t, d.Feed([]byte("event: done\r\ndata: {\"ok\":true}\r")))
	assert.Empty(t, d.Feed([]byte("\n\r")))
	frames := d.Feed([]byte("\n"))
	require.Len(t, frames, 1)
	assert.Equal(t, models.OutcomeDone, frames[0].Kind)
	assert.Equal(t, `{"ok":true}`, frames[0].Data)
	assert.Zero(t, d.Buffered())
}

func TestDecoder_SkipsEmptyAndCommentFrames(t *testing.T) {
	frames := NewDecoder().Feed([]byte("\n\n: keep-alive\n\nevent: progress\n\n"))
	assert.Empty(t, frames)
}

func TestDecoder_UnnamedFrameIsProgress(t *testing.T) {
	frames := NewDecoder().Feed([]byte("data: {\"message\":\"m\",\"detail\":\"\"}\n\n"))
	require.Len(t, frames, 1)
	assert.Equal(t, models.OutcomeProgress, frames[0].Kind)
}

func TestDecoder_FlushTrailingFrame(t *testing.T) {
	decoder := NewDecoder()
	assert.Empty(t, decoder.Feed([]byte("event: done\ndata: {\"ok\":true}\n")))

	frames := decoder.Flush()
	require.Len(t, frames, 1)
	assert.Equal(t, models.OutcomeDone, frames[0].Kind)
	assert.Empty(t, decoder.Flush())
}
