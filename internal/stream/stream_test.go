//go:build !integration

package stream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartrunai-edge/internal/domain"
)

func frame(content string) string {
	var b bytes.Buffer
	enc := NewEncoder(&b, "test-model")
	_ = enc.Delta(content)
	return b.String()
}

// chunkReader returns one preset chunk per Read call.
type chunkReader struct {
	chunks [][]byte
	err    error
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		if c.err != nil {
			return 0, c.err
		}
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	c.chunks[0] = c.chunks[0][n:]
	if len(c.chunks[0]) == 0 {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

func splitAt(b []byte, i int) *chunkReader {
	return &chunkReader{chunks: [][]byte{append([]byte(nil), b[:i]...), append([]byte(nil), b[i:]...)}}
}

func TestDecoderHoldsIncompleteRunes(t *testing.T) {
	src := []byte("héllo ✓ wörld 🏃")
	for i := 0; i <= len(src); i++ {
		d := NewDecoder()
		got := d.Decode(src[:i]) + d.Decode(src[i:]) + d.Flush()
		require.Equal(t, string(src), got, "split at %d", i)
	}
}

func TestDecoderFlushReplacesTruncatedRune(t *testing.T) {
	d := NewDecoder()
	out := d.Decode([]byte{'a', 0xE2, 0x9C})
	assert.Equal(t, "a", out)
	assert.Equal(t, 2, d.Pending())
	assert.Contains(t, d.Flush(), "\uFFFD")
	assert.Zero(t, d.Pending())
}

func TestAssemblerMidTokenSplit(t *testing.T) {
	a := NewAssembler()

	deltas, err := a.Push(`data: {"choices":[{"delta":{"content":"hel`)
	require.NoError(t, err)
	assert.Empty(t, deltas)
	assert.Empty(t, a.Text())

	deltas, err = a.Push("lo\"}}]}\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, deltas)
	assert.Equal(t, "hello", a.Text())
	assert.Empty(t, a.Buffered())
}

func TestAssemblerSkipsNonDataLines(t *testing.T) {
	a := NewAssembler()
	in := ": keep-alive\r\n\r\nevent: message\nid: 7\n" + frame("a") + "data: {\"choices\":[{\"delta\":{}}]}\n" + frame("b")
	deltas, err := a.Push(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, deltas)
	assert.Equal(t, StateReading, a.State())
}

func TestAssemblerStopsAtDone(t *testing.T) {
	a := NewAssembler()
	deltas, err := a.Push(frame("x") + "data: [DONE]\n\n" + frame("ignored"))
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, deltas)
	assert.Equal(t, StateDone, a.State())

	deltas, err = a.Push(frame("late"))
	require.NoError(t, err)
	assert.Empty(t, deltas)
	assert.Equal(t, "x", a.Text())
}

func TestAssemblerPushback(t *testing.T) {
	a := NewAssembler()
	_, err := a.Push("data: {broken\n")
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingMoreBytes, a.State())
	assert.Equal(t, "data: {broken\n", a.Buffered())

	// The malformed line stays at the head and blocks later lines until EOF.
	deltas, err := a.Push(frame("after"))
	require.NoError(t, err)
	assert.Empty(t, deltas)
	assert.True(t, strings.HasPrefix(a.Buffered(), "data: {broken\n"))

	assert.Equal(t, []string{"after"}, a.Flush())
	assert.Equal(t, StateDone, a.State())
	assert.Equal(t, "after", a.Text())
}

func TestAssemblerMaxPushbacks(t *testing.T) {
	a := NewAssembler(WithMaxPushbacks(1))
	_, err := a.Push("data: {broken\n")
	require.NoError(t, err)
	_, err = a.Push("\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStreamDecode))
	assert.Equal(t, StateErrored, a.State())
}

func TestAssemblerFlushHandlesUnterminatedLine(t *testing.T) {
	a := NewAssembler()
	deltas, err := a.Push(strings.TrimSuffix(frame("tail"), "\n\n"))
	require.NoError(t, err)
	assert.Empty(t, deltas)
	assert.Equal(t, []string{"tail"}, a.Flush())
}

func TestCollectIsSplitIndependent(t *testing.T) {
	var b bytes.Buffer
	enc := NewEncoder(&b, "m")
	for _, part := range []string{"Smart ", "Run AI ", "builds 🤖 agents", " — \"quoted\"\n"} {
		require.NoError(t, enc.Delta(part))
	}
	require.NoError(t, enc.Done())
	stream := b.Bytes()

	want, err := Collect(context.Background(), bytes.NewReader(stream))
	require.NoError(t, err)
	require.Equal(t, "Smart Run AI builds 🤖 agents — \"quoted\"\n", want)

	for i := 0; i <= len(stream); i++ {
		got, err := Collect(context.Background(), splitAt(stream, i))
		require.NoError(t, err, "split at %d", i)
		require.Equal(t, want, got, "split at %d", i)
	}
}

func TestCollectByteAtATime(t *testing.T) {
	src := []byte(frame("one ") + frame("twö") + "data: [DONE]\n\n")
	r := &chunkReader{}
	for _, c := range src {
		r.chunks = append(r.chunks, []byte{c})
	}
	got, err := Collect(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "one twö", got)
}

func TestConsumeEventsCarryCumulativeText(t *testing.T) {
	src := frame("a") + frame("b") + frame("c") + "data: [DONE]\n\n"
	var events []Event
	for ev, err := range Consume(context.Background(), strings.NewReader(src)) {
		require.NoError(t, err)
		events = append(events, ev)
	}
	require.Len(t, events, 4)
	assert.Equal(t, Event{Kind: EventDelta, Delta: "a", Text: "a"}, events[0])
	assert.Equal(t, Event{Kind: EventDelta, Delta: "b", Text: "ab"}, events[1])
	assert.Equal(t, Event{Kind: EventDelta, Delta: "c", Text: "abc"}, events[2])
	assert.Equal(t, Event{Kind: EventDone, Text: "abc"}, events[3])
}

func TestConsumeEndsWithoutDoneSentinel(t *testing.T) {
	got, err := Collect(context.Background(), strings.NewReader(frame("no sentinel")))
	require.NoError(t, err)
	assert.Equal(t, "no sentinel", got)
}

func TestConsumeReadErrorKeepsPartialText(t *testing.T) {
	boom := errors.New("connection reset")
	r := &chunkReader{chunks: [][]byte{[]byte(frame("partial"))}, err: boom}
	got, err := Collect(context.Background(), r)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStreamDecode))
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, "partial", got)
}

func TestConsumeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Collect(ctx, strings.NewReader(frame("x")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestConsumeStopsWhenCallerBreaks(t *testing.T) {
	src := frame("a") + frame("b") + "data: [DONE]\n\n"
	n := 0
	for range Consume(context.Background(), strings.NewReader(src)) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestWriteReplyFormat(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WriteReply(&b, "google/gemini-2.5-flash", "Hi there"))
	out := b.String()

	assert.True(t, strings.HasPrefix(out, "data: {"))
	assert.True(t, strings.HasSuffix(out, "data: [DONE]\n\n"))
	assert.Equal(t, 2, strings.Count(out, "data: "))
	assert.Contains(t, out, `"role":"assistant"`)
	assert.Contains(t, out, `"object":"chat.completion.chunk"`)

	got, err := Collect(context.Background(), &b)
	require.NoError(t, err)
	assert.Equal(t, "Hi there", got)
}
