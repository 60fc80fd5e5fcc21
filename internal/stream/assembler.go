package stream

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"smartrunai-edge/internal/domain"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
	deltaPath    = "choices.0.delta.content"
)

// State is the position of the consumer loop for one turn.
type State int

const (
	StateIdle State = iota
	StateReading
	StateLineAvailable
	StateAwaitingMoreBytes
	StateDone
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReading:
		return "reading"
	case StateLineAvailable:
		return "line_available"
	case StateAwaitingMoreBytes:
		return "awaiting_more_bytes"
	case StateDone:
		return "done"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type AssemblerOption func(*Assembler)

// WithMaxPushbacks fails the turn once the same line has been pushed back more
// than n times in a row. Zero means retry for as long as bytes keep arriving.
func WithMaxPushbacks(n int) AssemblerOption {
	return func(a *Assembler) {
		if n > 0 {
			a.maxPushbacks = n
		}
	}
}

// Assembler reassembles `data:` frames from decoded text and accumulates the
// assistant reply. textBuffer only ever holds text not yet resolved into a
// complete, parseable line.
type Assembler struct {
	textBuffer    string
	assistantText strings.Builder
	state         State
	err           error

	maxPushbacks int
	pushbacks    int
}

func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{state: StateIdle}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Assembler) State() State { return a.state }

// Text is the reply accumulated so far.
func (a *Assembler) Text() string { return a.assistantText.String() }

// Buffered returns the unresolved carry-over text.
func (a *Assembler) Buffered() string { return a.textBuffer }

func (a *Assembler) Err() error { return a.err }

// Fail moves the turn to Errored. Accumulated text is kept.
func (a *Assembler) Fail(err error) {
	if a.state == StateDone || a.state == StateErrored {
		return
	}
	a.state = StateErrored
	a.err = err
}

// Push consumes one decoded chunk and returns the deltas it completed, in order.
// A data line whose JSON does not parse is put back at the front of the buffer
// and processing stops until the next chunk.
func (a *Assembler) Push(chunk string) ([]string, error) {
	if a.state == StateDone || a.state == StateErrored {
		return nil, a.err
	}
	a.state = StateReading
	a.textBuffer += chunk

	var deltas []string
	for {
		idx := strings.IndexByte(a.textBuffer, '\n')
		if idx < 0 {
			return deltas, nil
		}
		a.state = StateLineAvailable
		line := a.textBuffer[:idx]
		a.textBuffer = a.textBuffer[idx+1:]
		line = strings.TrimSuffix(line, "\r")

		payload, ok := dataPayload(line)
		if !ok {
			a.state = StateReading
			continue
		}
		if payload == doneSentinel {
			a.state = StateDone
			return deltas, nil
		}
		if !gjson.Valid(payload) {
			a.textBuffer = line + "\n" + a.textBuffer
			a.state = StateAwaitingMoreBytes
			a.pushbacks++
			if a.maxPushbacks > 0 && a.pushbacks > a.maxPushbacks {
				a.Fail(fmt.Errorf("%w: line still malformed after %d retries", domain.ErrStreamDecode, a.maxPushbacks))
				return deltas, a.err
			}
			return deltas, nil
		}
		a.pushbacks = 0
		if d := extractDelta(payload); d != "" {
			a.assistantText.WriteString(d)
			deltas = append(deltas, d)
		}
		a.state = StateReading
	}
}

// Flush handles whatever is left once the source has ended. No more bytes are
// coming, so lines that still do not parse are dropped here.
func (a *Assembler) Flush() []string {
	if a.state == StateDone || a.state == StateErrored {
		return nil
	}
	rest := a.textBuffer
	a.textBuffer = ""

	var deltas []string
	for _, raw := range strings.Split(rest, "\n") {
		payload, ok := dataPayload(strings.TrimSuffix(raw, "\r"))
		if !ok {
			continue
		}
		if payload == doneSentinel {
			break
		}
		if !gjson.Valid(payload) {
			continue
		}
		if d := extractDelta(payload); d != "" {
			a.assistantText.WriteString(d)
			deltas = append(deltas, d)
		}
	}
	a.state = StateDone
	return deltas
}

// dataPayload returns the trimmed value of a `data: ` line. Blank lines,
// comments and other SSE fields report false.
func dataPayload(line string) (string, bool) {
	if line == "" || strings.HasPrefix(line, ":") {
		return "", false
	}
	if !strings.HasPrefix(line, dataPrefix) {
		return "", false
	}
	return strings.TrimSpace(line[len(dataPrefix):]), true
}

func extractDelta(payload string) string {
	r := gjson.Get(payload, deltaPath)
	if r.Type != gjson.String {
		return ""
	}
	return r.Str
}
